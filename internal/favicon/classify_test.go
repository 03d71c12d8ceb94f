package favicon_test

import (
	"favicon/internal/favicon"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsValidImage(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want bool
	}{
		{name: "png", in: []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A}, want: true},
		{name: "jpeg", in: []byte{0xFF, 0xD8, 0xFF, 0xE0}, want: true},
		{name: "gif", in: []byte("GIF89a"), want: true},
		{name: "ico", in: []byte{0x00, 0x00, 0x01, 0x00, 0x01}, want: true},
		{name: "svg", in: []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`), want: true},
		{name: "xml prolog", in: []byte(`<?xml version="1.0"?><svg/>`), want: true},
		{name: "html", in: []byte("<!DOCTYPE html><html>"), want: false},
		{name: "too short", in: []byte{0x89, 0x50, 0x4E}, want: false},
		{name: "empty", in: nil, want: false},
		{name: "svg not at start", in: []byte(" <svg>"), want: false},
		{name: "cur is not ico", in: []byte{0x00, 0x00, 0x02, 0x00}, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, favicon.IsValidImage(tc.in))
		})
	}
}

func TestContentType(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want string
	}{
		{name: "png", in: []byte{0x89, 0x50, 0x4E, 0x47}, want: "image/png"},
		{name: "jpeg", in: []byte{0xFF, 0xD8, 0xFF, 0xDB}, want: "image/jpeg"},
		{name: "gif", in: []byte("GIF87a"), want: "image/gif"},
		{name: "ico", in: []byte{0x00, 0x00, 0x01, 0x00}, want: "image/x-icon"},
		{name: "svg", in: []byte("<svg></svg>"), want: "image/svg+xml"},
		{name: "xml prolog", in: []byte(`<?xml version="1.0"?>`), want: "image/svg+xml"},
		{name: "svg after comment", in: []byte("<!-- icon --><svg></svg>"), want: "image/svg+xml"},
		{name: "svg beyond sniff window", in: []byte(strings.Repeat(" ", 100) + "<svg>"), want: "image/x-icon"},
		{name: "unknown falls back to ico", in: []byte("hello world"), want: "image/x-icon"},
		{name: "short falls back to ico", in: []byte("<sv"), want: "image/x-icon"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, favicon.ContentType(tc.in))
		})
	}
}

func TestContentTypeAgreesWithIsValidImage(t *testing.T) {
	for _, in := range [][]byte{
		{0x89, 0x50, 0x4E, 0x47},
		{0xFF, 0xD8, 0xFF, 0x00},
		[]byte("GIF8"),
		{0x00, 0x00, 0x01, 0x00},
		[]byte("<svg/>"),
	} {
		require.True(t, favicon.IsValidImage(in))
		require.NotEmpty(t, favicon.ContentType(in))
	}
}
