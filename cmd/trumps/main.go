// Command trumps plays Cricket Top Trumps in the terminal.
//
// Usage:
//
//	trumps play
//	trumps host --port 9999
//	trumps join --addr localhost:9999
//	trumps sim --games 1000 --seed 1
//	trumps cards
package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/peterkuimelis/crictrumps/internal/catalog"
	"github.com/peterkuimelis/crictrumps/internal/config"
	"github.com/peterkuimelis/crictrumps/internal/game"
	"github.com/peterkuimelis/crictrumps/internal/log"
	tnet "github.com/peterkuimelis/crictrumps/internal/net"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	root := &cobra.Command{
		Use:          "trumps",
		Short:        "Cricket Top Trumps against the computer",
		SilenceUsage: true,
	}

	root.AddCommand(playCmd())
	root.AddCommand(hostCmd())
	root.AddCommand(joinCmd())
	root.AddCommand(simCmd())
	root.AddCommand(cardsCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and cards and returns a context cancelled on
// interrupt.
func setup() (context.Context, context.CancelFunc, *config.Config, *catalog.Catalog, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	logger := cfg.Logger()
	slog.SetDefault(logger)

	cards, err := catalog.Open(cfg.CardsFile)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx, cancel, cfg, cards, logger, nil
}

// --------------------------------------------------------------------------
// play
// --------------------------------------------------------------------------

func playCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Play a game in this terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel, cfg, cards, logger, err := setup()
			if err != nil {
				return err
			}
			defer cancel()

			srv := &tnet.Server{
				Catalog:   cards.AllCards(),
				Delays:    cfg.Delays,
				MaxRounds: cfg.MaxRounds,
				Logger:    logger,
			}
			serverSide, clientSide := net.Pipe()
			done := make(chan error, 1)
			go func() { done <- srv.ServeConn(ctx, serverSide) }()

			if err := tnet.NewClient(clientSide, os.Stdin, os.Stdout).Run(ctx); err != nil {
				return err
			}
			clientSide.Close()
			return <-done
		},
	}
}

// --------------------------------------------------------------------------
// host / join
// --------------------------------------------------------------------------

func hostCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Serve games over TCP; each connection plays the computer",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel, cfg, cards, logger, err := setup()
			if err != nil {
				return err
			}
			defer cancel()

			if !cmd.Flags().Changed("port") {
				port = cfg.TCPPort
			}
			srv := &tnet.Server{
				Catalog:   cards.AllCards(),
				Delays:    cfg.Delays,
				MaxRounds: cfg.MaxRounds,
				Port:      fmt.Sprint(port),
				Logger:    logger,
			}
			return srv.Run(ctx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 9999, "TCP port to listen on (default TRUMPS_TCP_PORT)")
	return cmd
}

func joinCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Connect to a game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return tnet.Connect(ctx, addr, os.Stdin, os.Stdout)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "localhost:9999", "Server address")
	return cmd
}

// --------------------------------------------------------------------------
// sim
// --------------------------------------------------------------------------

func simCmd() *cobra.Command {
	var (
		games     int
		seed      int64
		maxRounds int
		trace     bool
	)
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Play the selector against itself and report results",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel, _, cards, logger, err := setup()
			if err != nil {
				return err
			}
			defer cancel()
			if games < 1 {
				return fmt.Errorf("--games must be positive")
			}
			if maxRounds < 1 {
				return fmt.Errorf("--max-rounds must be positive")
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}

			if trace {
				// replay the first game with its event log on stdout
				events := log.NewTextLogger(cmd.OutOrStdout())
				if _, err := game.Simulate(cards.AllCards(), rand.New(rand.NewSource(seed)), maxRounds, events); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}

			start := time.Now()
			results := make([]game.SimResult, games)
			g, ctx := errgroup.WithContext(ctx)
			g.SetLimit(runtime.NumCPU())
			deck := cards.AllCards()
			for i := range results {
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					res, err := game.Simulate(deck, rand.New(rand.NewSource(seed+int64(i))), maxRounds, nil)
					if err != nil {
						return err
					}
					results[i] = res
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			var wins [2]int
			var draws, limited, rounds int
			for _, r := range results {
				switch r.Winner {
				case game.SidePlayer, game.SideComputer:
					wins[r.Winner]++
				default:
					draws++
				}
				if strings.HasPrefix(r.Result, "round limit") {
					limited++
				}
				rounds += r.Rounds
			}
			logger.Info("Simulation finished", "games", games, "seed", seed, "duration", time.Since(start).Round(time.Millisecond))

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "games\t%d\n", games)
			fmt.Fprintf(w, "first hand wins\t%d\n", wins[game.SidePlayer])
			fmt.Fprintf(w, "second hand wins\t%d\n", wins[game.SideComputer])
			fmt.Fprintf(w, "drawn\t%d\n", draws)
			fmt.Fprintf(w, "hit round limit\t%d\n", limited)
			fmt.Fprintf(w, "average rounds\t%.1f\n", float64(rounds)/float64(games))
			return w.Flush()
		},
	}
	cmd.Flags().IntVar(&games, "games", 1000, "Number of games")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Base shuffle seed (0 for random)")
	cmd.Flags().IntVar(&maxRounds, "max-rounds", 500, "Round limit per game")
	cmd.Flags().BoolVar(&trace, "trace", false, "Print the event log of the first game")
	return cmd
}

// --------------------------------------------------------------------------
// cards
// --------------------------------------------------------------------------

func cardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cards",
		Short: "List the card catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cards, err := catalog.Open(cfg.CardsFile)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tCOUNTRY\tSPAN\tFORMATS\tAUTO PICK")
			for _, c := range cards.AllCards() {
				var formats []string
				for _, f := range game.Formats {
					if len(c.Stats.Line(f)) > 0 {
						formats = append(formats, string(f))
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", c.Name, c.Country, c.Span, strings.Join(formats, ","), game.ChooseStat(c))
			}
			return w.Flush()
		},
	}
}
