// Package api defines the JSON wire types of the DRS HTTP surface.
package api

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// Checksum is one digest entry on an object.
type Checksum struct {
	Checksum string `json:"checksum"`
	Type     string `json:"type"`
}

// AccessURL points a client at object bytes.
type AccessURL struct {
	URL     string   `json:"url"`
	Headers []string `json:"headers,omitempty"`
}

// AccessMethod describes one way to retrieve a blob's bytes.
type AccessMethod struct {
	Type      string     `json:"type"`
	AccessURL *AccessURL `json:"access_url,omitempty"`
	AccessID  string     `json:"access_id,omitempty"`
	Region    string     `json:"region,omitempty"`
}

// ContentsObject is one entry in a bundle's contents tree.
type ContentsObject struct {
	Name     string           `json:"name"`
	ID       string           `json:"id,omitempty"`
	DrsURI   string           `json:"drs_uri,omitempty"`
	Contents []ContentsObject `json:"contents,omitempty"`
}

// Object is the DRS metadata document for a blob or bundle.
type Object struct {
	ID            string           `json:"id"`
	Checksums     []Checksum       `json:"checksums"`
	CreatedTime   string           `json:"created_time"`
	Size          int64            `json:"size"`
	SelfURI       string           `json:"self_uri"`
	Name          string           `json:"name,omitempty"`
	Description   string           `json:"description,omitempty"`
	MimeType      string           `json:"mime_type,omitempty"`
	AccessMethods []AccessMethod   `json:"access_methods,omitempty"`
	Contents      []ContentsObject `json:"contents,omitempty"`
}

// ServiceType identifies the implemented API in the service-info document.
type ServiceType struct {
	Group    string `json:"group"`
	Artifact string `json:"artifact"`
	Version  string `json:"version"`
}

// ServiceInfo is the static capability and version descriptor.
type ServiceInfo struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        ServiceType `json:"type"`
	Description string      `json:"description,omitempty"`
	Version     string      `json:"version"`
	Environment string      `json:"environment,omitempty"`
}
