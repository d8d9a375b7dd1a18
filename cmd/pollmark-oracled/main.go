package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"pollmark.io/pollmark/oracle"
	"pollmark.io/pollmark/oracle/grpcoracle"
)

func main() {
	fs := flag.NewFlagSet("pollmark-oracled", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7878", "listen address")
	fixture := fs.String("fixture", "", "chain fixture file to serve (JSON)")

	_ = fs.Parse(os.Args[1:])
	if *fixture == "" {
		fmt.Fprintln(os.Stderr, "usage: pollmark-oracled --fixture <chain.json> [--listen addr]")
		os.Exit(2)
	}

	chain, err := oracle.LoadStaticChain(*fixture)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcoracle.RegisterChainQueryServer(s, &grpcoracle.Server{Chain: chain})

	fmt.Fprintf(os.Stderr, "pollmark-oracled listening on %s (fixture=%s)\n", lis.Addr().String(), *fixture)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
