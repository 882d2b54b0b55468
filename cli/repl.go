package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"schema-modeler/internal/openai"
	"schema-modeler/internal/pipeline"
)

type REPL struct {
	scanner   *bufio.Scanner
	running   bool
	generator *pipeline.Generator
	kind      openai.SchemaKind
}

func NewREPL(generator *pipeline.Generator) *REPL {
	return &REPL{
		scanner:   bufio.NewScanner(os.Stdin),
		running:   true,
		generator: generator,
		kind:      openai.SchemaDimensional,
	}
}

func (r *REPL) Start() {
	fmt.Println("🚀 Data Model Generator CLI Started")

	// Show the available tables up front, like the sidebar multiselect
	if !r.showTables() {
		return
	}

	fmt.Println("Type 'help' for commands, '/end' to exit")
	fmt.Print("> ")

	for r.running && r.scanner.Scan() {
		input := strings.TrimSpace(r.scanner.Text())
		r.processCommand(input)

		if r.running {
			fmt.Print("> ")
		}
	}

	if err := r.scanner.Err(); err != nil {
		fmt.Printf("Error reading input: %v\n", err)
	}
}

func (r *REPL) showTables() bool {
	fmt.Println("🔗 Connecting to the database...")

	tables, err := r.generator.ListTables(context.Background())
	if err != nil {
		fmt.Printf("❌ Failed to load table metadata: %v\n", err)
		return false
	}

	if len(tables) == 0 {
		fmt.Println("No tables found in the active schema")
		return false
	}

	fmt.Printf("✅ Found %d tables:\n", len(tables))
	for _, table := range tables {
		fmt.Printf("  - %s\n", table)
	}

	return true
}

func (r *REPL) processCommand(input string) {
	if input == "" {
		return
	}

	command, args, _ := strings.Cut(input, " ")
	args = strings.TrimSpace(args)

	switch command {
	case "help":
		r.printHelp()
	case "tables":
		r.showTables()
	case "kind":
		r.setKind(args)
	case "generate":
		r.generate(args)
	case "ask":
		r.ask(args)
	case "/end", "exit":
		fmt.Println("Goodbye! 👋")
		r.running = false
	default:
		fmt.Println("unsupported command, type 'help'")
	}
}

func (r *REPL) printHelp() {
	fmt.Println(`Commands:
  tables                 list tables in the active schema
  kind <dimensional|normalized>
                         set the schema kind for generation
  generate <t1,t2,...>   generate a data model for the listed tables
  generate all           generate a data model for every table
  ask <question>         ask a question about all tables
  /end                   exit`)
}

func (r *REPL) setKind(args string) {
	kind, err := openai.ParseSchemaKind(args)
	if err != nil {
		fmt.Printf("%v\n", err)
		return
	}

	r.kind = kind
	fmt.Printf("Schema kind set to %s\n", kind)
}

func (r *REPL) resolveTables(args string) ([]string, error) {
	if args == "all" || args == "" {
		return r.generator.ListTables(context.Background())
	}

	var tables []string
	for _, table := range strings.Split(args, ",") {
		table = strings.TrimSpace(table)
		if table != "" {
			tables = append(tables, table)
		}
	}
	return tables, nil
}

func (r *REPL) generate(args string) {
	tables, err := r.resolveTables(args)
	if err != nil {
		fmt.Printf("❌ Failed to resolve tables: %v\n", err)
		return
	}

	fmt.Printf("🧠 Generating a %s data model for %d tables...\n", r.kind, len(tables))

	result, err := r.generator.GenerateDataModel(context.Background(), tables, r.kind)
	if err != nil {
		fmt.Printf("❌ Generation failed: %v\n", err)
		return
	}

	printResult(result)
}

func (r *REPL) ask(question string) {
	if question == "" {
		fmt.Println("Usage: ask <question>")
		return
	}

	tables, err := r.generator.ListTables(context.Background())
	if err != nil {
		fmt.Printf("❌ Failed to load tables: %v\n", err)
		return
	}

	fmt.Println("🤔 Thinking...")

	answer, err := r.generator.AskSchemaQuestion(context.Background(), question, tables)
	if err != nil {
		fmt.Printf("❌ Question failed: %v\n", err)
		return
	}

	fmt.Println(answer)
}

func printResult(result *pipeline.ModelResult) {
	printSection("Model Summary", result.Sections.Summary, "No summary was generated.")
	printSection("SQL DDL", result.Sections.SQLSource, "SQL DDL not found in output.")
	printSection("Relationships and Join Logic", result.Sections.RelationshipText, "No relationships or join logic found in the output.")
	printSection("Brief Explanation", result.Sections.ExplanationText, "No brief explanation found in the output.")

	fmt.Println("\n## ER Diagram")
	if result.Sections.DiagramSource == "" {
		fmt.Println("Mermaid diagram not found.")
		return
	}

	validation := result.Validation
	switch {
	case validation == nil:
		// No validation attempt was made; show the raw source below.
	case validation.IsValid && validation.RepairedSource == result.Sections.DiagramSource:
		fmt.Println("✅ Mermaid code is valid.")
	case validation.IsValid:
		fmt.Println("✅ Mermaid code returned by the validator.")
	default:
		fmt.Printf("⚠️ Diagram could not be validated or repaired: %s\n", validation.ErrorMessage)
		fmt.Println("Raw diagram source shown for manual inspection.")
	}

	fmt.Println("```mermaid")
	fmt.Println(result.DiagramSource)
	fmt.Println("```")
}

func printSection(title, content, placeholder string) {
	fmt.Printf("\n## %s\n", title)
	if content == "" {
		fmt.Println(placeholder)
		return
	}
	fmt.Println(content)
}
