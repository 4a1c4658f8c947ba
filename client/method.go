package client

import "net/http"

// paramEncoding says where a method puts its parameters.
type paramEncoding int

const (
	encodeQuery paramEncoding = iota + 1
	encodeJSONBody
)

// Method is an HTTP method accepted by the Searchcraft API. The set is closed:
// only the package-level Method values below are valid.
type Method struct {
	name string
	enc  paramEncoding
}

// Supported methods. GET carries parameters in the query string, every other
// method carries them as a JSON body (DELETE included).
var (
	MethodGet    = Method{name: http.MethodGet, enc: encodeQuery}
	MethodPost   = Method{name: http.MethodPost, enc: encodeJSONBody}
	MethodPut    = Method{name: http.MethodPut, enc: encodeJSONBody}
	MethodPatch  = Method{name: http.MethodPatch, enc: encodeJSONBody}
	MethodDelete = Method{name: http.MethodDelete, enc: encodeJSONBody}
)

// String returns the HTTP verb.
func (m Method) String() string { return m.name }

func (m Method) valid() bool { return m.name != "" && m.enc != 0 }
