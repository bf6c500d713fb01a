//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/markkurossi/sigmaot/group"
	"github.com/markkurossi/sigmaot/logging"
	"github.com/markkurossi/sigmaot/p2p"
	"github.com/markkurossi/sigmaot/prg"
	"github.com/markkurossi/sigmaot/timing"
	"github.com/markkurossi/text/superscript"
)

// Params define the session parameters.
type Params struct {
	Group     group.Group
	T         int
	M         int
	N         int
	Size      int
	OT        string
	Malicious bool
	Verbose   bool
}

// Role runs one side of a session over the connection.
type Role func(conn *p2p.Conn, params *Params, rand io.Reader,
	log logging.Logger) (*Result, error)

// Result holds a role's output for the verification and the report.
type Result struct {
	Timing *timing.Timing
	// Output holds the role's protocol output for the in-process
	// cross-check.
	Output []byte
	// Inputs holds the OT sender's inputs and the OT receiver's
	// selection bits.
	Inputs [][]byte
	OK     bool
}

var roles = map[string][2]Role{
	"prove": {runProver, runVerifier},
	"ot":    {runOTSender, runOTReceiver},
}

var roleNames = map[string][2]string{
	"prove": {"P", "V"},
	"ot":    {"S", "R"},
}

func main() {
	mode := flag.String("mode", "prove", "session mode: prove or ot")
	grpName := flag.String("group", "p256", "group: p256, secp256k1, ed25519, or toy")
	t := flag.Int("t", 128, "soundness parameter in bits")
	m := flag.Int("m", 2, "number of DH tuples in the proof statement")
	n := flag.Int("n", 1024, "number of OTs")
	size := flag.Int("size", 128, "OT element size in bits")
	otName := flag.String("ot", "ext", "batch OT: ext or ddh")
	malicious := flag.Bool("malicious", false, "malicious security for ext OT")
	seed := flag.String("seed", "", "deterministic randomness seed")
	addr := flag.String("addr", "", "TCP address; in-process pipe if unset")
	role := flag.Int("role", 0, "role for TCP sessions: 1 listens, 2 dials")
	verbose := flag.Bool("v", false, "verbose output")
	flag.Parse()

	log.SetFlags(0)

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := logging.New(slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{
			Level: level,
		})))

	grp, err := group.ByName(*grpName)
	if err != nil {
		log.Fatal(err)
	}
	r, ok := roles[*mode]
	if !ok {
		log.Fatalf("invalid mode: %s", *mode)
	}
	if *otName != "ext" && *otName != "ddh" {
		log.Fatalf("invalid OT: %s", *otName)
	}
	params := &Params{
		Group:     grp,
		T:         *t,
		M:         *m,
		N:         *n,
		Size:      *size,
		OT:        *otName,
		Malicious: *malicious,
		Verbose:   *verbose,
	}

	var rands [2]io.Reader
	if len(*seed) > 0 {
		root := prg.New([]byte(*seed))
		rands[0] = root.Fork()
		rands[1] = root.Fork()
	}

	var logs [2]logging.Logger
	for i := 0; i < 2; i++ {
		logs[i] = logger.With("role", roleTag(*mode, i+1))
	}

	if len(*addr) == 0 {
		err = runPipe(r, params, rands, logs, *mode)
	} else {
		switch *role {
		case 1, 2:
			err = runTCP(r[*role-1], params, rands[*role-1], logs[*role-1],
				*addr, *role)
		default:
			err = fmt.Errorf("invalid role %d", *role)
		}
	}
	if err != nil {
		log.Fatal(err)
	}
}

func roleTag(mode string, id int) string {
	return roleNames[mode][id-1] + superscript.Itoa(id)
}

func runPipe(r [2]Role, params *Params, rands [2]io.Reader,
	logs [2]logging.Logger, mode string) error {

	c0, c1 := p2p.Pipe()

	type roleResult struct {
		result *Result
		err    error
	}
	done := make(chan roleResult)

	go func() {
		result, err := r[1](c1, params, rands[1], logs[1])
		c1.Close()
		done <- roleResult{
			result: result,
			err:    err,
		}
	}()

	r0, err0 := r[0](c0, params, rands[0], logs[0])
	c0.Close()
	rr := <-done

	if err0 != nil {
		return err0
	}
	if rr.err != nil {
		return rr.err
	}

	switch mode {
	case "prove":
		fmt.Printf("proof %s\n", verdict(rr.result.OK))
	case "ot":
		err := checkTransfer(r0, rr.result, params)
		if err != nil {
			return err
		}
		fmt.Printf("transfer verified: %d OTs\n", params.N)
	}
	r0.Timing.Print(os.Stdout, c0.Stats)

	return nil
}

func runTCP(r Role, params *Params, rand io.Reader, logger logging.Logger,
	addr string, role int) error {

	var conn *p2p.Conn
	var err error

	if role == 1 {
		listener, err := p2p.Listen(addr, logger)
		if err != nil {
			return err
		}
		logger.Info("listening", "addr", listener.Addr())
		var id int
		conn, id, err = listener.Accept()
		listener.Close()
		if err != nil {
			return err
		}
		if id != 2 {
			conn.Close()
			return fmt.Errorf("unexpected peer %d", id)
		}
	} else {
		conn, err = p2p.Dial(addr, role, 30*time.Second, logger)
		if err != nil {
			return err
		}
	}
	defer conn.Close()

	result, err := r(conn, params, rand, logger)
	if err != nil {
		return err
	}
	logger.Info("done", "ok", result.OK)
	result.Timing.Print(os.Stdout, conn.Stats)

	return nil
}

func verdict(ok bool) string {
	if ok {
		return "accepted"
	}
	return "rejected"
}
