// Package app wires the CLI: flag parsing, config loading, and the
// quote/swap/balance/tokens/history commands.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/hbarlabs/sswap/internal/config"
	"github.com/hbarlabs/sswap/internal/engine"
	swaperr "github.com/hbarlabs/sswap/internal/errors"
	"github.com/hbarlabs/sswap/internal/hid"
	"github.com/hbarlabs/sswap/internal/journal"
	"github.com/hbarlabs/sswap/internal/registry"
	"github.com/hbarlabs/sswap/internal/router"
	"github.com/hbarlabs/sswap/internal/signer"
)

const version = "1.2.0"

type Runner struct {
	stdout io.Writer
	stderr io.Writer
}

func NewRunner() *Runner {
	return NewRunnerWithWriters(os.Stdout, os.Stderr)
}

func NewRunnerWithWriters(stdout, stderr io.Writer) *Runner {
	return &Runner{stdout: stdout, stderr: stderr}
}

func (r *Runner) Run(args []string) int {
	state := &runtimeState{stdout: r.stdout, stderr: r.stderr}
	root := state.newRootCommand()
	root.SetArgs(args)
	root.SetOut(r.stdout)
	root.SetErr(r.stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(r.stderr, "error: %v\n", err)
		return swaperr.ExitCode(err)
	}
	return int(swaperr.CodeSuccess)
}

type runtimeState struct {
	stdout   io.Writer
	stderr   io.Writer
	flags    config.GlobalFlags
	settings config.Settings
	net      registry.Network
	log      zerolog.Logger
}

func (s *runtimeState) newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sswap",
		Short:         "SaucerSwap V2 quotes and swaps on Hedera",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load(s.flags)
			if err != nil {
				return swaperr.Wrap(swaperr.CodeUsage, "load configuration", err)
			}
			s.settings = settings
			net, err := registry.ByName(settings.Network)
			if err != nil {
				return swaperr.Wrap(swaperr.CodeUsage, "select network", err)
			}
			s.net = net
			level, err := zerolog.ParseLevel(strings.ToLower(settings.LogLevel))
			if err != nil {
				level = zerolog.InfoLevel
			}
			s.log = zerolog.New(zerolog.ConsoleWriter{Out: s.stderr}).With().Timestamp().Logger().Level(level)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&s.flags.ConfigPath, "config", "", "Path to config file")
	cmd.PersistentFlags().StringVar(&s.flags.Network, "network", "", "Hedera network (mainnet|testnet)")
	cmd.PersistentFlags().StringVar(&s.flags.RPCURL, "rpc-url", "", "JSON-RPC relay URL override")
	cmd.PersistentFlags().BoolVar(&s.flags.JSON, "json", false, "Emit JSON output")
	cmd.PersistentFlags().StringVar(&s.flags.Timeout, "timeout", "", "Overall command timeout (e.g. 90s)")
	cmd.PersistentFlags().StringVar(&s.flags.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")

	cmd.AddCommand(s.newQuoteCommand())
	cmd.AddCommand(s.newSwapCommand())
	cmd.AddCommand(s.newBalanceCommand())
	cmd.AddCommand(s.newTokensCommand())
	cmd.AddCommand(s.newHistoryCommand())
	cmd.AddCommand(newVersionCommand(s))
	return cmd
}

func newVersionCommand(s *runtimeState) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(s.stdout, "sswap "+version)
		},
	}
}

func (s *runtimeState) newTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens",
		Short: "List built-in tokens for the selected network",
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens := s.net.Tokens()
			if s.settings.JSON {
				return s.emitJSON(tokens)
			}
			for _, token := range tokens {
				fmt.Fprintf(s.stdout, "%-8s %-14s %d decimals\n", token.Symbol, token.ID, token.Decimals)
			}
			return nil
		},
	}
}

func (s *runtimeState) newHistoryCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently submitted swaps",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := journal.Open(s.settings.JournalPath, s.settings.JournalLockPath)
			if err != nil {
				return swaperr.Wrap(swaperr.CodeInternal, "open swap journal", err)
			}
			defer store.Close()
			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return swaperr.Wrap(swaperr.CodeInternal, "read swap journal", err)
			}
			if s.settings.JSON {
				return s.emitJSON(entries)
			}
			for _, entry := range entries {
				status := "ok"
				if !entry.Success {
					status = "failed"
				}
				fmt.Fprintf(s.stdout, "%s  %-7s %s -> %s  in=%s out=%s  %s\n",
					entry.CreatedAt.Format("2006-01-02 15:04:05"), status,
					entry.TokenIn, entry.TokenOut, entry.AmountIn, entry.AmountOut, entry.TxHash)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to show")
	return cmd
}

func (s *runtimeState) newBalanceCommand() *cobra.Command {
	var tokenArg, accountArg string
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show HBAR or token balance for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), s.settings.Timeout)
			defer cancel()

			account, err := s.resolveAccount(accountArg)
			if err != nil {
				return err
			}
			client, err := router.Dial(ctx, s.net, s.settings.RPCURL)
			if err != nil {
				return err
			}
			defer client.Close()

			if strings.EqualFold(strings.TrimSpace(tokenArg), registry.NativeSymbol) || tokenArg == "" {
				wei, err := client.NativeBalance(ctx, account)
				if err != nil {
					return err
				}
				hbar := hid.NewBaseAmount(wei).ToDecimal(18)
				return s.emitAmount("HBAR", hbar)
			}

			token, err := s.resolveToken(ctx, tokenArg, -1)
			if err != nil {
				return err
			}
			addr, err := hid.ToEVMAddress(token.id)
			if err != nil {
				return err
			}
			raw, err := client.TokenBalance(ctx, addr, account)
			if err != nil {
				return err
			}
			return s.emitAmount(token.symbol, hid.NewBaseAmount(raw).ToDecimal(token.decimals))
		},
	}
	cmd.Flags().StringVar(&tokenArg, "token", "", "Token symbol or Hedera id (default: native HBAR)")
	cmd.Flags().StringVar(&accountArg, "account", "", "Account address (default: signer address)")
	return cmd
}

func (s *runtimeState) newQuoteCommand() *cobra.Command {
	var inArg, outArg, amountArg string
	var decimalsIn, decimalsOut int
	var fee uint32
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Get a swap quote",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), s.settings.Timeout)
			defer cancel()

			tokenIn, tokenOut, amount, err := s.resolveSwapArgs(ctx, inArg, outArg, amountArg, &decimalsIn, &decimalsOut)
			if err != nil {
				return err
			}
			client, err := router.Dial(ctx, s.net, s.settings.RPCURL)
			if err != nil {
				return err
			}
			defer client.Close()

			eng := engine.New(client, nil, s.log)
			quoted, err := eng.GetQuote(ctx, tokenIn.id, tokenOut.id, amount, decimalsIn, decimalsOut, fee)
			if err != nil {
				return err
			}
			if s.settings.JSON {
				return s.emitJSON(map[string]any{
					"token_in":   tokenIn.id,
					"token_out":  tokenOut.id,
					"amount_in":  amount.String(),
					"amount_out": quoted.String(),
					"fee":        fee,
				})
			}
			fmt.Fprintf(s.stdout, "%s %s -> %s %s (fee tier %d)\n",
				amount, tokenIn.symbol, quoted, tokenOut.symbol, fee)
			return nil
		},
	}
	cmd.Flags().StringVar(&inArg, "in", "", "Input token (symbol, Hedera id, or HBAR)")
	cmd.Flags().StringVar(&outArg, "out", "", "Output token (symbol, Hedera id, or HBAR)")
	cmd.Flags().StringVar(&amountArg, "amount", "", "Input amount (decimal units)")
	cmd.Flags().IntVar(&decimalsIn, "decimals-in", -1, "Input token decimals (resolved automatically when omitted)")
	cmd.Flags().IntVar(&decimalsOut, "decimals-out", -1, "Output token decimals (resolved automatically when omitted)")
	cmd.Flags().Uint32Var(&fee, "fee", registry.DefaultFee, "Pool fee tier")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (s *runtimeState) newSwapCommand() *cobra.Command {
	var inArg, outArg, amountArg string
	var decimalsIn, decimalsOut int
	var fee uint32
	var slippage float64
	var deadlineMillis int64
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Execute a swap",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), s.settings.Timeout)
			defer cancel()

			tokenIn, tokenOut, amount, err := s.resolveSwapArgs(ctx, inArg, outArg, amountArg, &decimalsIn, &decimalsOut)
			if err != nil {
				return err
			}
			txSigner, err := signer.NewLocalSignerFromEnv()
			if err != nil {
				return swaperr.Wrap(swaperr.CodeSigner, "load signing key", err)
			}
			client, err := router.Dial(ctx, s.net, s.settings.RPCURL)
			if err != nil {
				return err
			}
			defer client.Close()

			if slippage < 0 {
				slippage = s.settings.Slippage
			}
			eng := engine.New(client, txSigner, s.log)
			result, err := eng.Swap(ctx, engine.SwapRequest{
				TokenIn:     tokenIn.id,
				TokenOut:    tokenOut.id,
				Amount:      amount,
				DecimalsIn:  decimalsIn,
				DecimalsOut: decimalsOut,
				Slippage:    slippage,
				Fee:         fee,
				Deadline:    hid.DeadlineMillis(deadlineMillis),
			})
			if err != nil {
				return err
			}

			s.recordSwap(ctx, tokenIn.id, tokenOut.id, amount, fee, result)

			if s.settings.JSON {
				if err := s.emitJSON(swapResultPayload(result)); err != nil {
					return err
				}
			} else if result.Success {
				fmt.Fprintf(s.stdout, "swap confirmed: %s (gas %d)\n", result.TxHash, result.GasUsed)
			} else {
				fmt.Fprintf(s.stdout, "swap failed: %s\n", result.Error)
			}
			if !result.Success {
				return swaperr.New(swaperr.CodeRevert, "swap did not complete")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&inArg, "in", "", "Input token (symbol, Hedera id, or HBAR)")
	cmd.Flags().StringVar(&outArg, "out", "", "Output token (symbol, Hedera id, or HBAR)")
	cmd.Flags().StringVar(&amountArg, "amount", "", "Input amount (decimal units)")
	cmd.Flags().IntVar(&decimalsIn, "decimals-in", -1, "Input token decimals (resolved automatically when omitted)")
	cmd.Flags().IntVar(&decimalsOut, "decimals-out", -1, "Output token decimals (resolved automatically when omitted)")
	cmd.Flags().Uint32Var(&fee, "fee", registry.DefaultFee, "Pool fee tier")
	cmd.Flags().Float64Var(&slippage, "slippage", -1, "Slippage tolerance fraction in [0,1)")
	cmd.Flags().Int64Var(&deadlineMillis, "deadline-ms", 0, "Deadline as Unix milliseconds (default: now + 10m)")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (s *runtimeState) recordSwap(ctx context.Context, tokenIn, tokenOut string, amount hid.DecimalAmount, fee uint32, result engine.SwapResult) {
	store, err := journal.Open(s.settings.JournalPath, s.settings.JournalLockPath)
	if err != nil {
		s.log.Warn().Err(err).Msg("swap journal unavailable")
		return
	}
	defer store.Close()
	if fee == 0 {
		fee = registry.DefaultFee
	}
	entry := journal.Entry{
		Network:   s.net.Name,
		TokenIn:   tokenIn,
		TokenOut:  tokenOut,
		AmountIn:  amount.String(),
		AmountOut: result.AmountOut.String(),
		Fee:       fee,
		TxHash:    result.TxHash,
		Success:   result.Success,
		Error:     result.Error,
	}
	if err := store.Record(ctx, entry); err != nil {
		s.log.Warn().Err(err).Msg("failed to record swap")
	}
}

func swapResultPayload(result engine.SwapResult) map[string]any {
	payload := map[string]any{
		"success":    result.Success,
		"amount_in":  result.AmountIn.String(),
		"amount_out": result.AmountOut.String(),
		"gas_used":   result.GasUsed,
	}
	if result.TxHash != "" {
		payload["tx_hash"] = result.TxHash
	}
	if result.Error != "" {
		payload["error"] = result.Error
	}
	return payload
}

func (s *runtimeState) emitJSON(data any) error {
	enc := json.NewEncoder(s.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return swaperr.Wrap(swaperr.CodeInternal, "encode output", err)
	}
	return nil
}

func (s *runtimeState) emitAmount(symbol string, amount hid.DecimalAmount) error {
	if s.settings.JSON {
		return s.emitJSON(map[string]any{"token": symbol, "balance": amount.String()})
	}
	fmt.Fprintf(s.stdout, "%s %s\n", amount, symbol)
	return nil
}
