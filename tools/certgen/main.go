// Command certgen writes a development CA and a server certificate signed by
// it. Point the server at server.crt/server.key and the client at ca.crt.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/atinyakov/MediaKeeper/internal/certgen"
)

func main() {
	dir := flag.String("dir", "certs", "output directory")
	hosts := flag.String("hosts", "localhost,127.0.0.1", "comma-separated server host names and IPs")
	days := flag.Int("days", 365, "server certificate validity in days")
	flag.Parse()

	if err := run(*dir, splitHosts(*hosts), time.Duration(*days)*24*time.Hour); err != nil {
		fmt.Fprintln(os.Stderr, "certgen:", err)
		os.Exit(1)
	}
	fmt.Printf("Certificates generated into %s\n", *dir)
}

// run reuses an existing CA in dir so that clients already trusting it keep
// working, and always issues a fresh server certificate.
func run(dir string, hosts []string, validity time.Duration) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	caCert, caKey := filepath.Join(dir, "ca.crt"), filepath.Join(dir, "ca.key")

	ca, err := certgen.LoadCA(caCert, caKey)
	if err != nil {
		if ca, err = certgen.NewCA("MediaKeeper Dev CA", 10*365*24*time.Hour); err != nil {
			return err
		}
		if err := ca.WriteFiles(caCert, caKey); err != nil {
			return err
		}
	}

	srv, err := certgen.IssueServer(ca, hosts, validity)
	if err != nil {
		return err
	}
	return srv.WriteFiles(filepath.Join(dir, "server.crt"), filepath.Join(dir, "server.key"))
}

func splitHosts(s string) []string {
	var hosts []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}
