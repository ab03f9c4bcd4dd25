package logging

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
)

const traceparentHeader = "traceparent"

// {version}-{trace-id}-{parent-id}-{flags}; only the trace id is kept.
var traceparentRe = regexp.MustCompile(`^([0-9a-f]{2})-([0-9a-f]{32})-([0-9a-f]{16})-[0-9a-f]{2}$`)

// traceIDFrom returns the trace id of a W3C traceparent header. Version ff and
// all-zero trace or parent ids are invalid and yield "".
func traceIDFrom(header string) string {
	m := traceparentRe.FindStringSubmatch(strings.ToLower(header))
	if m == nil || m[1] == "ff" || allZero(m[2]) || allZero(m[3]) {
		return ""
	}
	return m[2]
}

func allZero(s string) bool {
	return strings.Trim(s, "0") == ""
}

// requestFields correlates log lines with Cloud Trace when a project is known.
func requestFields(header, projectID, requestID string) []zap.Field {
	var fields []zap.Field
	if traceID := traceIDFrom(header); traceID != "" && projectID != "" {
		fields = append(fields, zap.String("logging.googleapis.com/trace", "projects/"+projectID+"/traces/"+traceID))
	}
	if requestID != "" {
		fields = append(fields, zap.String("requestId", requestID))
	}
	return fields
}
