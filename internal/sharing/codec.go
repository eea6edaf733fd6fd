// Package sharing serializes a metric set into a compact URL-safe token so an
// analysis input can be reproduced from a link.
package sharing

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"abtest/domain/core"
	"abtest/domain/experiment"
	"abtest/internal/parser"
)

// Version is the current token document version.
const Version = 1

// MaxDecodedBytes bounds the decompressed document size.
const MaxDecodedBytes = 4 << 20

var encoding = base64.RawURLEncoding

type document struct {
	Version int              `json:"v"`
	Metrics []metricDocument `json:"m"`
}

type metricDocument struct {
	Name     string               `json:"name"`
	Variants []experiment.Variant `json:"variants"`
}

// Encode turns a metric set into a token.
func Encode(set *experiment.MetricSet) (string, error) {
	if set == nil {
		return "", fmt.Errorf("encode: nil metric set")
	}

	doc := document{Version: Version, Metrics: make([]metricDocument, 0, set.Len())}
	for _, m := range set.Metrics() {
		doc.Metrics = append(doc.Metrics, metricDocument{Name: m.Name, Variants: m.Variants})
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode share document: %w", err)
	}

	var buf bytes.Buffer
	zw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := zw.Write(raw); err != nil {
		return "", fmt.Errorf("compress share document: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compress share document: %w", err)
	}

	return encoding.EncodeToString(buf.Bytes()), nil
}

// Decode restores a metric set from a token. The result is rebuilt through
// the parser's Builder, so a hand-crafted token cannot smuggle in counts the
// text parser would reject.
func Decode(token string) (*experiment.MetricSet, error) {
	compressed, err := encoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
	}

	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(io.LimitReader(zr, MaxDecodedBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
	}
	if len(raw) > MaxDecodedBytes {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", core.ErrInvalidToken, MaxDecodedBytes)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("%w: %d", core.ErrUnsupportedVersion, doc.Version)
	}

	b := parser.NewBuilder()
	for _, m := range doc.Metrics {
		if err := b.StartMetric(m.Name, m.Name); err != nil {
			return nil, err
		}
		for _, v := range m.Variants {
			line := fmt.Sprintf("%s %d %d", v.Name, v.Trials, v.Successes)
			if err := b.AddVariant(v.Name, v.Trials, v.Successes, line); err != nil {
				return nil, err
			}
		}
	}
	return b.Finish()
}
