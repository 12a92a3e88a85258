package payload

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// maxFormPartSize limits how much of a single multipart form part is read.
const maxFormPartSize = 1 << 20 // 1 MB

// FromRequest parses the request body into a Tree, regardless of the declared
// content type. The source system has been observed sending JSON bodies,
// form-encoded bodies carrying a JSON string in a "payload" field, and raw
// bytes; all of them must produce a usable tree so the pipeline can degrade
// gracefully instead of rejecting the event.
//
// Resolution order:
//  1. JSON content types: parse the body as a JSON object.
//  2. Form-encoded / multipart: if a "payload" field holds valid JSON, use it;
//     otherwise expose the form fields as a flat tree.
//  3. Anything else: attempt JSON, then fall back to {"raw": <body text>}.
//
// An empty body yields an empty tree. Parsing never fails: the worst malformed
// input still produces the raw-bytes fallback. Gzip-compressed bodies
// (Content-Encoding: gzip) are transparently decompressed first.
func FromRequest(r *http.Request) Tree {
	raw := readBody(r)
	if len(raw) == 0 {
		return Tree{}
	}

	mediaType, params, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch {
	case strings.Contains(mediaType, "json"):
		if t, ok := decodeJSONObject(raw); ok {
			return t
		}
	case mediaType == "application/x-www-form-urlencoded":
		if values, err := url.ParseQuery(string(raw)); err == nil {
			return fromFormValues(values)
		}
	case strings.HasPrefix(mediaType, "multipart/"):
		if t, ok := fromMultipart(raw, params["boundary"]); ok {
			return t
		}
	}

	// Last resort: the body might be JSON sent under a wrong content type.
	if t, ok := decodeJSONObject(raw); ok {
		return t
	}
	return Tree{"raw": string(raw)}
}

// readBody drains the request body, decompressing gzip when declared.
// Read errors (including bodies exceeding a caller-installed MaxBytesReader)
// yield whatever was read before the failure.
func readBody(r *http.Request) []byte {
	if r.Body == nil {
		return nil
	}

	var src io.Reader = r.Body
	if strings.EqualFold(r.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			return nil
		}
		defer gz.Close()
		src = gz
	}

	raw, err := io.ReadAll(src)
	if err != nil {
		return raw
	}
	return raw
}

// decodeJSONObject parses raw as a JSON object. Non-object JSON (arrays,
// scalars) is rejected so the pipeline always starts from a string-keyed map.
func decodeJSONObject(raw []byte) (Tree, bool) {
	var t Tree
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, false
	}
	if t == nil {
		return Tree{}, true
	}
	return t, true
}

// fromFormValues maps form fields into a Tree. A "payload" field carrying
// valid JSON replaces the form entirely; a "payload" field with anything else
// is kept verbatim under the same key.
func fromFormValues(values url.Values) Tree {
	if payload := values.Get("payload"); payload != "" {
		if t, ok := decodeJSONObject([]byte(payload)); ok {
			return t
		}
		return Tree{"payload": payload}
	}

	t := make(Tree, len(values))
	for key := range values {
		t[key] = values.Get(key)
	}
	return t
}

// fromMultipart parses a multipart body using the declared boundary and
// applies the same "payload"-field convention as URL-encoded forms.
func fromMultipart(raw []byte, boundary string) (Tree, bool) {
	if boundary == "" {
		return nil, false
	}

	reader := multipart.NewReader(bytes.NewReader(raw), boundary)
	values := url.Values{}
	for {
		part, err := reader.NextPart()
		if err != nil {
			break
		}
		name := part.FormName()
		if name == "" {
			continue
		}
		data, err := io.ReadAll(io.LimitReader(part, maxFormPartSize))
		part.Close()
		if err != nil {
			continue
		}
		values.Add(name, string(data))
	}

	if len(values) == 0 {
		return nil, false
	}
	return fromFormValues(values), true
}
