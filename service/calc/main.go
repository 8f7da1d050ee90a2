package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"calc/engine"
	"calc/engine/ast"
	"calc/engine/lexer"
	"calc/lib/logging"
	"calc/lib/timer"

	"github.com/alexflint/go-arg"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type CalcArgs struct {
	Expr   string `arg:"positional" help:"expression to evaluate, read line by line from stdin when omitted"`
	Tokens bool   `arg:"--tokens" help:"print the token stream"`
	Ast    bool   `arg:"--ast" help:"print the parsed expression tree"`
	JSON   bool   `arg:"--json" help:"print the tree as json instead of parenthesized text"`
	Dev    bool   `arg:"--dev,env:DEV" help:"debug logging with stage timings"`
}

func (CalcArgs) Description() string {
	return "evaluates integer arithmetic expressions with + - * / and brackets"
}

func printResult(out io.Writer, args CalcArgs, res engine.Result) error {
	if args.Tokens {
		lexemes := lo.Map(res.Tokens, func(t lexer.Token, _ int) string { return t.String() })
		fmt.Fprintf(out, "Tokens: %s\n", strings.Join(lexemes, " "))
	}
	if args.Ast {
		if args.JSON {
			ser, err := ast.Marshal(res.Ast)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "AST: %s\n", ser)
		} else {
			fmt.Fprintf(out, "AST: %s\n", ast.Print(res.Ast))
		}
	}
	if args.Tokens || args.Ast {
		fmt.Fprintf(out, "Result: %d\n", res.Value)
	} else {
		fmt.Fprintf(out, "%d\n", res.Value)
	}
	return nil
}

func evalOne(ctx context.Context, calc engine.Calculator, logger *zap.Logger, args CalcArgs, expr string, out, errOut io.Writer) bool {
	ctx = timer.WithTracing(ctx)
	res, err := calc.Exec(ctx, expr)
	_ = timer.LogTracingInfo(ctx, logger)
	if err == nil {
		err = printResult(out, args, res)
	}
	if err != nil {
		stage := engine.Stage(err)
		if stage == "" {
			stage = "output"
		}
		fmt.Fprintf(errOut, "error: %s: %v\n", stage, err)
		return false
	}
	return true
}

// run evaluates the expression from args, or every non blank line of in, and
// returns the process exit status.
func run(ctx context.Context, calc engine.Calculator, logger *zap.Logger, args CalcArgs, in io.Reader, out, errOut io.Writer) int {
	if args.Expr != "" {
		if !evalOne(ctx, calc, logger, args, args.Expr, out, errOut) {
			return 1
		}
		return 0
	}
	status := 0
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !evalOne(ctx, calc, logger, args, line, out, errOut) {
			status = 1
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(errOut, "error: input: %v\n", err)
		return 1
	}
	return status
}

func main() {
	var flags CalcArgs
	arg.MustParse(&flags)

	logger, err := logging.New(flags.Dev)
	if err != nil {
		panic(fmt.Sprintf("Failed to setup logger: %v", err))
	}
	calc := engine.NewCalculator(logger)
	status := run(context.Background(), calc, logger, flags, os.Stdin, os.Stdout, os.Stderr)
	_ = logger.Sync()
	os.Exit(status)
}
