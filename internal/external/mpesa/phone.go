package mpesa

import (
	"errors"
	"regexp"
	"strings"
)

var ErrInvalidPhone = errors.New("invalid phone number")

var canonicalPhone = regexp.MustCompile(`^254(7|1)\d{8}$`)

// NormalizePhone converts any accepted national format (07XX..., +2547XX...,
// 2547XX..., with optional spaces and dashes) to the canonical 254XXXXXXXXX
// form the provider expects.
func NormalizePhone(raw string) (string, error) {
	p := strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	p = strings.TrimPrefix(p, "+")
	if strings.HasPrefix(p, "0") {
		p = "254" + p[1:]
	}

	if !canonicalPhone.MatchString(p) {
		return "", ErrInvalidPhone
	}
	return p, nil
}
