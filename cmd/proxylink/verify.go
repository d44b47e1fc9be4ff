package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"proxylink/internal/clash"
	"proxylink/internal/logger"
	"proxylink/internal/xray"
	"proxylink/internal/xray/parser"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [files...]",
	Short: "Check share links with xray-core",
	Long: `Reads share links (or a base64 subscription) from the given files or stdin and checks
that each one parses, builds into an xray-core outbound, and converts back to the
same link. ssr and hysteria (v1) links have no xray outbound and only get the
parse check. A link written by another tool may legitimately re-encode
differently, so the round-trip column is informational.`,
	Run: func(cmd *cobra.Command, args []string) {
		var text []byte
		if len(args) == 0 {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				logger.Log.Fatalf("Error reading stdin: %v", err)
			}
			text = data
		}
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				logger.Log.Fatalf("Error reading %s: %v", path, err)
			}
			text = append(text, '\n')
			text = append(text, data...)
		}

		links := xray.ExtractLinks(string(text))
		if len(links) == 0 {
			logger.Log.Warn("No links found in input.")
			return
		}

		results := make([]verifyResult, len(links))
		failed := 0
		for i, raw := range links {
			results[i] = verifyLink(raw)
			if !results[i].ok() {
				failed++
			}
		}

		printVerifyTable(os.Stdout, results)

		if failed > 0 {
			logger.Log.Fatalf("❌ %d of %d links failed verification.", failed, len(links))
		}
		logger.Log.Infof("✅ All %d links verified.", len(links))
	},
}

type verifyResult struct {
	Kind      clash.Kind
	Name      string
	Parse     error
	Outbound  error
	RoundTrip error
}

func (r verifyResult) ok() bool {
	return r.Parse == nil && r.Outbound == nil
}

// verifyLink parses raw, builds it as an xray outbound and re-encodes it.
func verifyLink(raw string) verifyResult {
	p, err := parser.Parse(raw)
	if err != nil {
		return verifyResult{Parse: err}
	}
	res := verifyResult{Kind: p.Protocol, Name: p.Remarks}

	if err := xray.Verify(raw); err != nil && !errors.Is(err, xray.ErrNoOutbound) {
		res.Outbound = err
	}

	link, err := clash.Encode(p.ToRecord())
	switch {
	case err != nil:
		res.RoundTrip = err
	case link.URI != raw:
		res.RoundTrip = fmt.Errorf("re-encoded as %s", link.URI)
	}
	return res
}

func printVerifyTable(out io.Writer, results []verifyResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tNAME\tPARSE\tXRAY\tROUND-TRIP")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Kind, r.Name, status(r.Parse), status(r.Outbound), roundTripStatus(r))
	}
	w.Flush()

	for _, r := range results {
		for _, err := range []error{r.Parse, r.Outbound, r.RoundTrip} {
			if err != nil {
				logger.Log.Debugf("%s %q: %v", r.Kind, r.Name, err)
			}
		}
	}
}

func status(err error) string {
	if err != nil {
		return "FAIL"
	}
	return "ok"
}

func roundTripStatus(r verifyResult) string {
	switch {
	case r.Parse != nil:
		return "-"
	case r.RoundTrip != nil:
		return "differs"
	}
	return "same"
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
