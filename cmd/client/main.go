package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/rcrowley/go-metrics"

	"github.com/dayanaadylkhanova/powgate/internal/entity"
	"github.com/dayanaadylkhanova/powgate/internal/service"
	"github.com/dayanaadylkhanova/powgate/pkg/config"
	"github.com/dayanaadylkhanova/powgate/pkg/logger"
	"github.com/dayanaadylkhanova/powgate/pkg/puzzle"
)

func main() {
	cfg := config.ParseClient()
	log := logger.NewJSON(os.Stderr, logger.ParseLevel(cfg.LogLevel))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	conn, err := (&net.Dialer{}).DialContext(ctx, "tcp", cfg.ServerAddr)
	if err != nil {
		log.Error("dial failed", "err", err)
		os.Exit(1)
	}
	defer conn.Close()
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}

	br := bufio.NewReader(conn)
	bw := bufio.NewWriter(conn)

	// 1) challenge
	line, err := br.ReadString('\n')
	if err != nil {
		log.Error("read challenge failed", "err", err)
		os.Exit(1)
	}
	var ch entity.Challenge
	if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &ch); err != nil {
		log.Error("unmarshal challenge failed", "err", err)
		os.Exit(1)
	}
	log.Debug("challenge received", "timestamp", ch.Timestamp, "difficulty", ch.Difficulty, "expires", ch.Expires)

	// 2) solve
	hashrate := metrics.NewMeter()
	defer hashrate.Stop()
	started := time.Now()

	solver := service.Solver{
		Batch: cfg.Batch,
		Mine:  puzzle.MineOptions{Workers: cfg.Workers, Hashrate: hashrate},
		Log:   log,
	}
	sol, err := solver.Solve(ctx, ch)
	if err != nil {
		log.Error("solve failed", "err", err)
		os.Exit(2)
	}
	log.Debug("nonce found",
		"nonce", sol.Nonce,
		"hashes", hashrate.Count(),
		"elapsed", time.Since(started).String(),
	)

	// 3) send solution
	out, _ := json.Marshal(sol)
	if _, err := bw.Write(append(out, '\n')); err != nil {
		log.Error("write solution failed", "err", err)
		os.Exit(1)
	}
	if err := bw.Flush(); err != nil {
		log.Error("flush failed", "err", err)
		os.Exit(1)
	}

	// 4) read quote
	reply, err := br.ReadString('\n')
	if err != nil {
		log.Error("read quote failed", "err", err)
		os.Exit(1)
	}
	fmt.Println(strings.TrimSpace(reply))
}
