package ratelimit

import "strings"

const UnknownIP = "unknown"

// identityHeaders in priority order. Only the first hop of X-Forwarded-For counts.
var identityHeaders = []string{"X-Forwarded-For", "X-Real-IP", "CF-Connecting-IP"}

// ClientIP picks the caller address from proxy headers.
func ClientIP(header func(name string) string) string {
	for _, name := range identityHeaders {
		value := header(name)
		if name == "X-Forwarded-For" {
			value = strings.Split(value, ",")[0]
		}
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return UnknownIP
}

func Identifier(ip string) string {
	return "ip:" + ip
}
