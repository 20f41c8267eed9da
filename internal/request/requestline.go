package request

import "bytes"

// parseRequestLine scans data for a CRLF-terminated request line and splits
// it on ASCII whitespace into method, request-target and protocol-version.
// found is false when no CRLF is present yet (the caller should wait for
// more data). When found is true but any field came out empty, ok is false
// and the caller marks the request Malformed rather than erroring, per the
// spec's "a subsequent router pass will produce a 400-class error" rule.
func parseRequestLine(data []byte) (method, target, version string, consumed int, found, ok bool) {
	idx := bytes.Index(data, crlf)
	if idx == -1 {
		return "", "", "", 0, false, false
	}

	line := data[:idx]
	consumed = idx + len(crlf)

	fields := bytes.Fields(line)
	if len(fields) != 3 {
		return "", "", "", consumed, true, false
	}

	method = string(fields[0])
	target = string(fields[1])
	version = string(fields[2])

	if method == "" || target == "" || version == "" {
		return "", "", "", consumed, true, false
	}

	return method, target, version, consumed, true, true
}
