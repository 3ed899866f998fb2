package awsclient

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	amzDateFormat = "20060102T150405Z"
	sigAlgorithm  = "AWS4-HMAC-SHA256"
)

// sigV4 signs Secrets Manager calls. Only host, content-type and x-amz-*
// headers are signed so transport-added headers cannot break the signature.
type sigV4 struct {
	region       string
	service      string
	accessKey    string
	secretKey    string
	sessionToken string
}

func (s sigV4) sign(req *http.Request, payload []byte, now time.Time) {
	stamp := now.UTC().Format(amzDateFormat)
	day := stamp[:8]
	req.Header.Set("X-Amz-Date", stamp)
	if s.sessionToken != "" {
		req.Header.Set("X-Amz-Security-Token", s.sessionToken)
	}

	names, headerBlock := s.signedHeaders(req)
	digest := sha256.Sum256(payload)
	canonical := req.Method + "\n" +
		canonicalPath(req.URL) + "\n" +
		canonicalQuery(req.URL.Query()) + "\n" +
		headerBlock + "\n" +
		names + "\n" +
		hex.EncodeToString(digest[:])

	scope := day + "/" + s.region + "/" + s.service + "/aws4_request"
	requestDigest := sha256.Sum256([]byte(canonical))
	toSign := sigAlgorithm + "\n" + stamp + "\n" + scope + "\n" + hex.EncodeToString(requestDigest[:])

	key := []byte("AWS4" + s.secretKey)
	for _, part := range []string{day, s.region, s.service, "aws4_request"} {
		key = mac(key, part)
	}
	req.Header.Set("Authorization", sigAlgorithm+
		" Credential="+s.accessKey+"/"+scope+
		", SignedHeaders="+names+
		", Signature="+hex.EncodeToString(mac(key, toSign)))
}

func (s sigV4) signedHeaders(req *http.Request) (string, string) {
	values := map[string]string{"host": req.URL.Host}
	for name, vals := range req.Header {
		lower := strings.ToLower(name)
		if lower != "content-type" && !strings.HasPrefix(lower, "x-amz-") {
			continue
		}
		trimmed := make([]string, len(vals))
		for i, v := range vals {
			trimmed[i] = strings.Join(strings.Fields(v), " ")
		}
		values[lower] = strings.Join(trimmed, ",")
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	var block strings.Builder
	for _, name := range names {
		block.WriteString(name + ":" + values[name] + "\n")
	}
	return strings.Join(names, ";"), block.String()
}

func canonicalPath(u *url.URL) string {
	if p := u.EscapedPath(); p != "" {
		return p
	}
	return "/"
}

func canonicalQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	return strings.ReplaceAll(q.Encode(), "+", "%20")
}

func mac(key []byte, data string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return h.Sum(nil)
}
