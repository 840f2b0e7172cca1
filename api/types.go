package api

// EncodeRequest asks the server to encode Text with Codec. An empty Codec
// selects the server default.
type EncodeRequest struct {
	Codec string `json:"codec,omitempty"`
	Text  string `json:"text"`
}

type EncodeResponse struct {
	Codec  string `json:"codec"`
	Tokens string `json:"tokens"`
}

type DecodeRequest struct {
	Codec  string `json:"codec,omitempty"`
	Tokens string `json:"tokens"`
}

type DecodeResponse struct {
	Codec string `json:"codec"`
	Text  string `json:"text"`
}

type Op string

const (
	OpEncode Op = "encode"
	OpDecode Op = "decode"
)

// BatchRequest applies Op to every input independently. Outputs are
// returned in input order.
type BatchRequest struct {
	Codec  string   `json:"codec,omitempty"`
	Op     Op       `json:"op"`
	Inputs []string `json:"inputs"`
}

type BatchResponse struct {
	Codec   string   `json:"codec"`
	Outputs []string `json:"outputs"`
}

type CodecInfo struct {
	Name        string   `json:"name"`
	Base        int      `json:"base"`
	Alphabet    []string `json:"alphabet"`
	Description string   `json:"description"`
}

type ListResponse struct {
	Codecs []CodecInfo `json:"codecs"`
}

type VersionResponse struct {
	Version string `json:"version"`
}
