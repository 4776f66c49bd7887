package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeDetail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "string detail", body: `{"detail":"Incorrect username or password"}`, want: "Incorrect username or password"},
		{name: "validation list", body: `{"detail":[{"loc":["body","email"],"msg":"value is not a valid email address","type":"value_error"}]}`, want: "body.email: value is not a valid email address"},
		{name: "numeric loc", body: `{"detail":[{"loc":["query","port",0],"msg":"bad"}]}`, want: "query.port.0: bad"},
		{name: "empty list", body: `{"detail":[]}`, want: ""},
		{name: "no detail", body: `{"error":"boom"}`, want: ""},
		{name: "not json", body: `<html>502</html>`, want: ""},
		{name: "empty", body: ``, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeDetail([]byte(tt.body)))
		})
	}
}
