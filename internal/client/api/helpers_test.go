package api

import (
	"encoding/pem"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeServerCA saves the test server's self-signed certificate as a PEM bundle.
func writeServerCA(t *testing.T, srv *httptest.Server, path string) {
	t.Helper()
	block := &pem.Block{Type: "CERTIFICATE", Bytes: srv.Certificate().Raw}
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))
}
