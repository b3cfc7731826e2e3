package badgecheck

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/goccy/go-json"
)

// MaxArtifactSize is the largest request body or upload the extractors
// read.
const MaxArtifactSize = 8 << 20

// RecipientParameter is the query or form parameter that carries the
// identifiers a badge is verified against. It may be repeated.
const RecipientParameter = "recipient"

// Request is a badge read from an HTTP request, with the per-call
// verification inputs that came with it.
type Request struct {
	Artifact    any
	Recipients  []string
	InstanceURL string
}

// Options returns the VerifyOptions the request carries.
func (r *Request) Options() []VerifyOption {
	var opts []VerifyOption
	if len(r.Recipients) > 0 {
		opts = append(opts, WithRecipients(r.Recipients...))
	}
	if r.InstanceURL != "" {
		opts = append(opts, WithInstanceURL(r.InstanceURL))
	}
	return opts
}

// ArtifactExtractor is a function that takes a request as input and
// returns the badge it carries or an error. An error should only be
// returned if a badge was found but could not be read. When the request
// simply does not carry one, nil is returned with no error.
type ArtifactExtractor func(r *http.Request) (*Request, error)

// envelope is a JSON request body that wraps the badge with its inputs.
type envelope struct {
	Artifact    json.RawMessage `json:"artifact"`
	Recipients  []string        `json:"recipients"`
	InstanceURL string          `json:"instanceUrl"`
}

// BodyArtifactExtractor reads the badge from the request body.
//
// A JSON body of the form {"artifact": ..., "recipients": [...],
// "instanceUrl": "..."} is unwrapped; any other JSON body is taken as the
// badge itself. Other bodies, such as baked images, are passed on as raw
// bytes. Recipients are also read from the query string.
func BodyArtifactExtractor(r *http.Request) (*Request, error) {
	if r.Body == nil {
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxArtifactSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if len(body) > MaxArtifactSize {
		return nil, fmt.Errorf("request body exceeds %d bytes", MaxArtifactSize)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}

	req := &Request{Artifact: body, Recipients: r.URL.Query()[RecipientParameter]}
	if !isJSON(r.Header.Get("Content-Type")) {
		return req, nil
	}

	var env envelope
	if body[0] == '{' {
		if err := json.Unmarshal(body, &env); err != nil {
			return nil, fmt.Errorf("failed to parse request body: %w", err)
		}
	}
	if len(env.Artifact) == 0 {
		return req, nil
	}

	artifact, err := decodeArtifact(env.Artifact)
	if err != nil {
		return nil, err
	}
	req.Artifact = artifact
	req.Recipients = append(req.Recipients, env.Recipients...)
	req.InstanceURL = env.InstanceURL
	return req, nil
}

// decodeArtifact unwraps an envelope's artifact: strings are passed on as
// text, objects as raw JSON.
func decodeArtifact(raw json.RawMessage) (any, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		return []byte(raw), nil
	}
	return nil, errors.New(`"artifact" must be a string or an object`)
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || mediaType == "application/ld+json"
}

// FormFileArtifactExtractor builds an ArtifactExtractor that reads the
// badge from the multipart upload named field. Recipients are read from
// the form.
func FormFileArtifactExtractor(field string) ArtifactExtractor {
	return func(r *http.Request) (*Request, error) {
		if err := r.ParseMultipartForm(MaxArtifactSize); err != nil {
			if errors.Is(err, http.ErrNotMultipart) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to parse form: %w", err)
		}

		file, _, err := r.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to open %q: %w", field, err)
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, MaxArtifactSize+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", field, err)
		}
		if len(data) > MaxArtifactSize {
			return nil, fmt.Errorf("%q exceeds %d bytes", field, MaxArtifactSize)
		}

		return &Request{
			Artifact:    data,
			Recipients:  r.Form[RecipientParameter],
			InstanceURL: r.FormValue("instanceUrl"),
		}, nil
	}
}

// ParameterArtifactExtractor returns an ArtifactExtractor that reads the
// badge, a hosted URL or JSON text, from the query string parameter param.
func ParameterArtifactExtractor(param string) ArtifactExtractor {
	return func(r *http.Request) (*Request, error) {
		query := r.URL.Query()
		value := query.Get(param)
		if value == "" {
			return nil, nil
		}
		return &Request{Artifact: value, Recipients: query[RecipientParameter]}, nil
	}
}

// MultiArtifactExtractor returns an ArtifactExtractor that runs multiple
// ArtifactExtractors and takes the first one that finds a badge. If an
// ArtifactExtractor returns an error that error is immediately returned.
func MultiArtifactExtractor(extractors ...ArtifactExtractor) ArtifactExtractor {
	return func(r *http.Request) (*Request, error) {
		for _, ex := range extractors {
			req, err := ex(r)
			if err != nil {
				return nil, err
			}
			if req != nil {
				return req, nil
			}
		}
		return nil, nil
	}
}
