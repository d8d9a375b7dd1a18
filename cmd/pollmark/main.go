package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"pollmark.io/pollmark/canonical"
	"pollmark.io/pollmark/identity"
	"pollmark.io/pollmark/oracle"
	"pollmark.io/pollmark/oracle/oracleconfig"
	"pollmark.io/pollmark/proof"
	"pollmark.io/pollmark/schema"
	"pollmark.io/pollmark/survey"
	"pollmark.io/pollmark/tally"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "hash":
		return cmdHash(args[1:], out, errOut)
	case "validate":
		return cmdValidate(args[1:], out, errOut)
	case "decode":
		return cmdDecode(args[1:], out, errOut)
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "sign":
		return cmdSign(args[1:], out, errOut)
	case "verify":
		return cmdVerify(args[1:], out, errOut)
	case "resolve":
		return cmdResolve(args[1:], out, errOut)
	case "tally":
		return cmdTally(args[1:], out, errOut)
	case "snapshot-cid":
		return cmdSnapshotCID(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
		printUsage(errOut)
		return 2
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "pollmark: on-chain survey verification and tally CLI")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  pollmark hash [--check <hex>] <details.json>")
	fmt.Fprintln(w, "  pollmark validate details <details.json>")
	fmt.Fprintln(w, "  pollmark validate response --survey <details.json> <response.json>")
	fmt.Fprintln(w, "  pollmark decode <metadata.json>")
	fmt.Fprintln(w, "  pollmark key gen [--scheme ed25519|dilithium3]")
	fmt.Fprintln(w, "  pollmark sign --response <file> --credential <id> --seed-hex <64hex>")
	fmt.Fprintln(w, "  pollmark verify --response <file> --credential <id>")
	fmt.Fprintln(w, "  pollmark resolve --response <file> --signer <addr> [--roles r1,r2] (--fixture <chain.json> | --config <oracle.json>)")
	fmt.Fprintln(w, "  pollmark tally --survey <details.json> --responses <stored.json> [--fixture <chain.json> | --config <oracle.json>]")
	fmt.Fprintln(w, "  pollmark snapshot-cid <file>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - hash prints the blake2b-256 content hash of the canonical survey encoding")
	fmt.Fprintln(w, "  - decode accepts label-17 transaction metadata and prints the normalized envelope")
	fmt.Fprintln(w, "  - --seed-hex must be 32 bytes (64 hex chars) ed25519 seed")
	fmt.Fprintln(w, "  - --fixture serves oracle facts from a local JSON file; --config dials a gRPC oracle")
	fmt.Fprintln(w, "  - tally reads a JSON array of stored responses and prints the result with its snapshot hash and CID")
}

func readDetails(path string) (*survey.Details, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return survey.NormalizeDetails(b)
}

func readResponse(path string) (*survey.Response, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return survey.NormalizeResponse(b)
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func cmdHash(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("hash", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var check string
	fs.StringVar(&check, "check", "", "Expected hash to compare against")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: pollmark hash [--check <hex>] <details.json>")
		return 2
	}
	d, err := readDetails(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read details: %v\n", err)
		return 1
	}
	h, err := canonical.SurveyHashHex(d)
	if err != nil {
		fmt.Fprintf(errOut, "hash: %v\n", err)
		return 1
	}
	if check != "" {
		if !strings.EqualFold(check, h) {
			fmt.Fprintf(errOut, "hash mismatch: computed %s\n", h)
			return 1
		}
		_, _ = fmt.Fprintln(out, "OK")
		return 0
	}
	_, _ = fmt.Fprintln(out, h)
	return 0
}

func cmdValidate(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "usage: pollmark validate <details|response> ...")
		return 2
	}
	switch args[0] {
	case "details":
		fs := flag.NewFlagSet("validate details", flag.ContinueOnError)
		fs.SetOutput(errOut)
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: pollmark validate details <details.json>")
			return 2
		}
		d, err := readDetails(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "read details: %v\n", err)
			return 1
		}
		return printValidation(schema.ValidateDetails(d), out, errOut)
	case "response":
		fs := flag.NewFlagSet("validate response", flag.ContinueOnError)
		fs.SetOutput(errOut)
		var surveyPath string
		fs.StringVar(&surveyPath, "survey", "", "Survey details file the response answers")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if surveyPath == "" || fs.NArg() != 1 {
			fmt.Fprintln(errOut, "usage: pollmark validate response --survey <details.json> <response.json>")
			return 2
		}
		d, err := readDetails(surveyPath)
		if err != nil {
			fmt.Fprintf(errOut, "read details: %v\n", err)
			return 1
		}
		r, err := readResponse(fs.Arg(0))
		if err != nil {
			fmt.Fprintf(errOut, "read response: %v\n", err)
			return 1
		}
		return printValidation(schema.ValidateResponse(r, d), out, errOut)
	default:
		fmt.Fprintf(errOut, "unknown validate subcommand: %s\n", args[0])
		return 2
	}
}

func printValidation(res schema.Result, out io.Writer, errOut io.Writer) int {
	if res.Valid {
		_, _ = fmt.Fprintln(out, "OK")
		return 0
	}
	for _, v := range res.Errors {
		fmt.Fprintf(errOut, "%s: %s\n", v.RuleID, v.Message)
	}
	return 1
}

func cmdDecode(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: pollmark decode <metadata.json>")
		return 2
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read metadata: %v\n", err)
		return 1
	}
	var metadata map[string]any
	if err := json.Unmarshal(b, &metadata); err != nil {
		fmt.Fprintf(errOut, "parse metadata: %v\n", err)
		return 1
	}
	env, err := survey.DecodeEnvelope(metadata)
	if err != nil {
		fmt.Fprintf(errOut, "decode: %v\n", err)
		return 1
	}
	if err := printJSON(out, env); err != nil {
		fmt.Fprintf(errOut, "encode: %v\n", err)
		return 1
	}
	return 0
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 || args[0] != "gen" {
		fmt.Fprintln(errOut, "usage: pollmark key gen [--scheme ed25519|dilithium3]")
		return 2
	}
	fs := flag.NewFlagSet("key gen", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var scheme string
	fs.StringVar(&scheme, "scheme", proof.SchemeEd25519, "Signature scheme")
	if err := fs.Parse(args[1:]); err != nil {
		return 2
	}
	switch scheme {
	case proof.SchemeEd25519:
		pub, priv, err := proof.GenerateEd25519Keypair(nil)
		if err != nil {
			fmt.Fprintf(errOut, "generate: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintf(out, "scheme: %s\n", scheme)
		_, _ = fmt.Fprintf(out, "seed:   %s\n", hex.EncodeToString(priv.Seed()))
		_, _ = fmt.Fprintf(out, "public: %s\n", hex.EncodeToString(pub))
		return 0
	case proof.SchemeDilithium3:
		pub, priv, err := proof.GenerateDilithium3Keypair(nil)
		if err != nil {
			fmt.Fprintf(errOut, "generate: %v\n", err)
			return 1
		}
		pubBytes, err := pub.MarshalBinary()
		if err != nil {
			fmt.Fprintf(errOut, "encode public key: %v\n", err)
			return 1
		}
		privBytes, err := priv.MarshalBinary()
		if err != nil {
			fmt.Fprintf(errOut, "encode private key: %v\n", err)
			return 1
		}
		_, _ = fmt.Fprintf(out, "scheme:  %s\n", scheme)
		_, _ = fmt.Fprintf(out, "private: %s\n", hex.EncodeToString(privBytes))
		_, _ = fmt.Fprintf(out, "public:  %s\n", hex.EncodeToString(pubBytes))
		return 0
	default:
		fmt.Fprintf(errOut, "unknown scheme: %s\n", scheme)
		return 2
	}
}

func cmdSign(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("sign", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var responsePath, credential, seedHex string
	fs.StringVar(&responsePath, "response", "", "Response file to sign")
	fs.StringVar(&credential, "credential", "", "Credential the proof claims")
	fs.StringVar(&seedHex, "seed-hex", "", "ed25519 seed (64 hex chars)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if responsePath == "" || credential == "" || seedHex == "" {
		fmt.Fprintln(errOut, "usage: pollmark sign --response <file> --credential <id> --seed-hex <64hex>")
		return 2
	}
	seed, err := hex.DecodeString(seedHex)
	if err != nil || len(seed) != ed25519.SeedSize {
		fmt.Fprintln(errOut, "--seed-hex must be 32 bytes (64 hex chars)")
		return 2
	}
	r, err := readResponse(responsePath)
	if err != nil {
		fmt.Fprintf(errOut, "read response: %v\n", err)
		return 1
	}
	p, err := proof.AttachEd25519(r, credential, ed25519.NewKeyFromSeed(seed))
	if err != nil {
		fmt.Fprintf(errOut, "sign: %v\n", err)
		return 1
	}
	r.ResponseCredential = credential
	r.Proof = p
	if err := printJSON(out, r); err != nil {
		fmt.Fprintf(errOut, "encode: %v\n", err)
		return 1
	}
	return 0
}

func cmdVerify(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var responsePath, credential string
	fs.StringVar(&responsePath, "response", "", "Response file carrying a proof")
	fs.StringVar(&credential, "credential", "", "Credential the proof must claim (defaults to the response's)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if responsePath == "" {
		fmt.Fprintln(errOut, "usage: pollmark verify --response <file> [--credential <id>]")
		return 2
	}
	r, err := readResponse(responsePath)
	if err != nil {
		fmt.Fprintf(errOut, "read response: %v\n", err)
		return 1
	}
	if credential == "" {
		credential = r.ResponseCredential
	}
	if err := proof.VerifyResponseProof(r, credential); err != nil {
		fmt.Fprintf(errOut, "invalid: %v\n", err)
		return 1
	}
	_, _ = fmt.Fprintln(out, "OK")
	return 0
}

// openChain builds a ChainQuery from either a local fixture file or a gRPC
// oracle config. Exactly one of the two may be set; neither returns nil.
func openChain(fixturePath, configPath string, errOut io.Writer) (oracle.ChainQuery, func() error, int) {
	switch {
	case fixturePath != "" && configPath != "":
		fmt.Fprintln(errOut, "--fixture and --config are mutually exclusive")
		return nil, nil, 2
	case fixturePath != "":
		chain, err := oracle.LoadStaticChain(fixturePath)
		if err != nil {
			fmt.Fprintf(errOut, "load fixture: %v\n", err)
			return nil, nil, 1
		}
		return chain, nil, 0
	case configPath != "":
		cfg, err := oracleconfig.LoadFile(configPath)
		if err != nil {
			fmt.Fprintf(errOut, "load oracle config: %v\n", err)
			return nil, nil, 1
		}
		chain, closeFn, err := oracleconfig.Open(cfg)
		if err != nil {
			fmt.Fprintf(errOut, "open oracle: %v\n", err)
			return nil, nil, 1
		}
		return chain, closeFn, 0
	default:
		return nil, nil, 0
	}
}

func parseRoles(s string) ([]survey.Role, error) {
	if s == "" {
		return nil, nil
	}
	var roles []survey.Role
	for _, part := range strings.Split(s, ",") {
		r := survey.Role(strings.TrimSpace(part))
		known := false
		for _, k := range survey.KnownRoles {
			if r == k {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown role %q", part)
		}
		roles = append(roles, r)
	}
	return roles, nil
}

func cmdResolve(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var responsePath, signer, rolesFlag, fixturePath, configPath string
	fs.StringVar(&responsePath, "response", "", "Response file to resolve")
	fs.StringVar(&signer, "signer", "", "Signer address observed on the carrying transaction")
	fs.StringVar(&rolesFlag, "roles", "", "Comma-separated required roles (empty = unrestricted)")
	fs.StringVar(&fixturePath, "fixture", "", "Oracle fixture file")
	fs.StringVar(&configPath, "config", "", "gRPC oracle config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if responsePath == "" || (fixturePath == "" && configPath == "") {
		fmt.Fprintln(errOut, "usage: pollmark resolve --response <file> --signer <addr> [--roles r1,r2] (--fixture <chain.json> | --config <oracle.json>)")
		return 2
	}
	roles, err := parseRoles(rolesFlag)
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 2
	}
	r, err := readResponse(responsePath)
	if err != nil {
		fmt.Fprintf(errOut, "read response: %v\n", err)
		return 1
	}
	chain, closeFn, code := openChain(fixturePath, configPath, errOut)
	if code != 0 {
		return code
	}
	if closeFn != nil {
		defer closeFn()
	}

	rs := &identity.Resolver{Chain: chain}
	res := rs.Resolve(context.Background(), identity.Request{
		Response: r,
		Signer:   signer,
		Required: roles,
	})
	if err := printJSON(out, res); err != nil {
		fmt.Fprintf(errOut, "encode: %v\n", err)
		return 1
	}
	if !res.Verified {
		return 1
	}
	return 0
}

func cmdTally(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("tally", flag.ContinueOnError)
	fs.SetOutput(errOut)
	var surveyPath, responsesPath, surveyHash, fixturePath, configPath string
	fs.StringVar(&surveyPath, "survey", "", "Survey details file")
	fs.StringVar(&responsesPath, "responses", "", "JSON array of stored responses")
	fs.StringVar(&surveyHash, "survey-hash", "", "Survey hash to stamp the snapshot with (default: computed)")
	fs.StringVar(&fixturePath, "fixture", "", "Oracle fixture file (stake-based surveys)")
	fs.StringVar(&configPath, "config", "", "gRPC oracle config file (stake-based surveys)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if surveyPath == "" || responsesPath == "" {
		fmt.Fprintln(errOut, "usage: pollmark tally --survey <details.json> --responses <stored.json> [--fixture <chain.json> | --config <oracle.json>]")
		return 2
	}
	d, err := readDetails(surveyPath)
	if err != nil {
		fmt.Fprintf(errOut, "read details: %v\n", err)
		return 1
	}
	if res := schema.ValidateDetails(d); !res.Valid {
		fmt.Fprintln(errOut, "invalid survey details:")
		printValidation(res, out, errOut)
		return 1
	}
	if surveyHash == "" {
		surveyHash, err = canonical.SurveyHashHex(d)
		if err != nil {
			fmt.Fprintf(errOut, "hash: %v\n", err)
			return 1
		}
	}

	b, err := os.ReadFile(responsesPath)
	if err != nil {
		fmt.Fprintf(errOut, "read responses: %v\n", err)
		return 1
	}
	var responses []survey.StoredResponse
	if err := json.Unmarshal(b, &responses); err != nil {
		fmt.Fprintf(errOut, "parse responses: %v\n", err)
		return 1
	}

	chain, closeFn, code := openChain(fixturePath, configPath, errOut)
	if code != 0 {
		return code
	}
	if closeFn != nil {
		defer closeFn()
	}
	engine := &tally.Engine{}
	if chain != nil {
		engine.Stake = &tally.ChainStake{Chain: chain}
	}

	result, err := engine.Tally(context.Background(), d, surveyHash, responses)
	if err != nil {
		fmt.Fprintf(errOut, "tally: %v\n", err)
		return 1
	}
	if err := printJSON(out, result); err != nil {
		fmt.Fprintf(errOut, "encode: %v\n", err)
		return 1
	}
	return 0
}

func cmdSnapshotCID(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("snapshot-cid", flag.ContinueOnError)
	fs.SetOutput(errOut)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(errOut, "usage: pollmark snapshot-cid <file>")
		return 2
	}
	b, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", fs.Arg(0), err)
		return 1
	}
	c := canonical.CIDv1RawSHA256(b)
	if c == "" {
		fmt.Fprintln(errOut, "failed to compute CID")
		return 1
	}
	_, _ = fmt.Fprintln(out, c)
	return 0
}
