package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/astewartau/biql/engine"
)

const (
	shellPrompt     = "biql> "
	continuedPrompt = "   -> "
	historyFileName = "query_history"
)

// runShell starts BIQL's interactive REPL, grounded on the teacher's
// runInteractiveShell (shell.go): same history file convention, same
// multiline continuation behavior for a query left dangling on AND/OR.
func runShell(ctx context.Context, dataset, outputFormat string, debugf func(string, ...any)) error {
	debugf("building index for %s", dataset)
	eng, err := engine.Build(ctx, dataset)
	if err != nil {
		return newExitError(ExitDatasetError, "%v", err)
	}

	historyFile, err := getHistoryFilePath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not set up history: %v\n", err)
		historyFile = ""
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            shellPrompt,
		HistoryFile:       historyFile,
		AutoComplete:      createCompleter(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return newExitError(ExitArgumentError, "failed to initialize shell: %v", err)
	}
	defer rl.Close()

	fmt.Println("BIQL interactive shell")
	fmt.Printf("Dataset: %s\n", dataset)
	fmt.Println("Type 'help' for commands, 'exit' or Ctrl+D to quit")
	fmt.Println()

	var multiline strings.Builder
	inMultiline := false

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				if inMultiline {
					multiline.Reset()
					inMultiline = false
					rl.SetPrompt(shellPrompt)
					continue
				}
				fmt.Println("\nUse 'exit' or Ctrl+D to quit")
				continue
			}
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if !inMultiline && (line == "exit" || line == "quit" || line == "\\q") {
			break
		}
		if !inMultiline && line == "help" {
			printShellHelp()
			continue
		}

		if multiline.Len() > 0 {
			multiline.WriteString(" ")
		}
		multiline.WriteString(line)

		if endsDangling(line) {
			inMultiline = true
			rl.SetPrompt(continuedPrompt)
			continue
		}

		q := multiline.String()
		multiline.Reset()
		inMultiline = false
		rl.SetPrompt(shellPrompt)

		result, err := eng.RunQuery(q, outputFormat)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		fmt.Println(result)
	}

	fmt.Println("\nGoodbye!")
	return nil
}

// endsDangling reports whether a line ends on a boolean connective,
// signaling the query continues on the next line (shell ergonomics only;
// the parser itself is whitespace-insensitive).
func endsDangling(line string) bool {
	fields := strings.Fields(strings.ToUpper(line))
	if len(fields) == 0 {
		return false
	}
	last := fields[len(fields)-1]
	return last == "AND" || last == "OR" || last == "NOT"
}

func printShellHelp() {
	fmt.Println("BIQL shell commands:")
	fmt.Println()
	fmt.Println("  Type a BIQL query and press Enter to run it.")
	fmt.Println("  A query ending in AND/OR/NOT continues on the next line.")
	fmt.Println()
	fmt.Println("  help   show this help")
	fmt.Println("  exit   exit the shell")
	fmt.Println("  quit   exit the shell")
	fmt.Println()
}

func createCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("SELECT"),
		readline.PcItem("DISTINCT"),
		readline.PcItem("FROM"),
		readline.PcItem("WHERE"),
		readline.PcItem("GROUP"),
		readline.PcItem("BY"),
		readline.PcItem("HAVING"),
		readline.PcItem("ORDER"),
		readline.PcItem("ASC"),
		readline.PcItem("DESC"),
		readline.PcItem("AND"),
		readline.PcItem("OR"),
		readline.PcItem("NOT"),
		readline.PcItem("IN"),
		readline.PcItem("LIKE"),
		readline.PcItem("NULL"),
		readline.PcItem("FORMAT"),
		readline.PcItem("COUNT"),
		readline.PcItem("AVG"),
		readline.PcItem("MAX"),
		readline.PcItem("MIN"),
		readline.PcItem("SUM"),
		readline.PcItem("ARRAY_AGG"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
		readline.PcItem("quit"),
	)
}

func getHistoryFilePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(homeDir, ".config", "biql")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(configDir, historyFileName), nil
}
