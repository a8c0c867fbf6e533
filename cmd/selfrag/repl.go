package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/redrussianarmy/self-rag/selfrag"
)

const exampleQuestion = "What is retrieval-augmented generation?"

var styles = struct {
	title  lipgloss.Style
	prompt lipgloss.Style
	label  lipgloss.Style
	answer lipgloss.Style
	warn   lipgloss.Style
	err    lipgloss.Style
	info   lipgloss.Style
}{
	title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Border(lipgloss.DoubleBorder(), false, false, true, false),
	prompt: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
	label:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244")),
	answer: lipgloss.NewStyle().PaddingLeft(2).Width(100),
	warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	err:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	info:   lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
}

type runner interface {
	Run(ctx context.Context, question string) (*selfrag.Result, error)
}

// interactive answers the example question, then reads questions until an
// exit command or end of input.
func interactive(ctx context.Context, r runner, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, styles.title.Render("Self-RAG System with Quality Control"))
	fmt.Fprintf(out, "\nRunning example query: %q\n", exampleQuestion)
	ask(ctx, r, exampleQuestion, out)

	scanner := bufio.NewScanner(in)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprint(out, "\n"+styles.prompt.Render("Enter your question (or 'exit' to quit): "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		question := scanner.Text()
		if isExit(question) {
			return nil
		}
		ask(ctx, r, question, out)
	}
}

// ask answers one question of the interactive loop, printing any error.
func ask(ctx context.Context, r runner, question string, out io.Writer) {
	if err := answer(ctx, r, question, out); err != nil {
		fmt.Fprintln(out, styles.err.Render("Error: "+err.Error()))
	}
}

func isExit(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "exit", "quit", "q":
		return true
	}
	return false
}

// answer runs one question and prints the result. Errors are left to the
// caller to report.
func answer(ctx context.Context, r runner, question string, out io.Writer) error {
	fmt.Fprintf(out, "Processing query: %s\n", question)

	res, err := r.Run(ctx, question)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, renderResult(res))
	return nil
}

func renderResult(res *selfrag.Result) string {
	var b strings.Builder

	b.WriteString("\n" + styles.label.Render("Result:") + "\n")
	b.WriteString(styles.answer.Render(res.Answer) + "\n")
	switch res.Outcome {
	case selfrag.OutcomeUngrounded:
		b.WriteString(styles.warn.Render(fmt.Sprintf("Answer could not be grounded after %d attempts; returning best effort.", res.Attempts)) + "\n")
	case selfrag.OutcomeUnresolved:
		b.WriteString(styles.warn.Render(fmt.Sprintf("Answer did not resolve the question after %d attempts; returning best effort.", res.Attempts)) + "\n")
	}

	b.WriteString(styles.label.Render("Route: ") + strings.Join(res.Route, " -> ") + "\n")
	b.WriteString(styles.label.Render("Sources:") + "\n")
	if len(res.Documents) == 0 {
		b.WriteString("  (none)\n")
	}
	for i, doc := range res.Documents {
		source := doc.Source()
		if source == "" {
			source = doc.ID
		}
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, source))
	}
	return b.String()
}
