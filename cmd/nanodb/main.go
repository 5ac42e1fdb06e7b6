// Command nanodb is NanoDB's thin process entry point: it loads config,
// opens a Database, and runs a small fixed demo workload (create table,
// insert rows, select) so the engine is exercisable end to end. The SQL
// textual parser stays out of scope, per spec.md; this demo builds
// statement values directly the way an external parser would hand them to
// the executor. Grounded on the teacher's cmd/server/main.go (flag-based
// config path, internal.LoadConfig, workdir setup).
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/nanodb/nanodb/internal/catalog"
	"github.com/nanodb/nanodb/internal/config"
	"github.com/nanodb/nanodb/internal/engine"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "nanodb:", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(cfg, logger); err != nil {
		logger.Error("nanodb: fatal", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	db, err := engine.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.Execute(engine.CreateTable{
		Name: "student",
		Columns: []engine.ColumnDef{
			{Name: "id", Type: catalog.TypeInt},
			{Name: "name", Type: catalog.TypeVarchar, Size: 10},
			{Name: "score", Type: catalog.TypeInt},
		},
	})
	if err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	for i := int32(0); i < 10; i++ {
		_, err := db.Execute(engine.InsertInto{
			Name: "student",
			Values: []engine.Value{
				engine.IntValue(3 + i),
				engine.StringValue(fmt.Sprintf("MyName%d", i)),
				engine.IntValue(80 + i),
			},
		})
		if err != nil {
			return fmt.Errorf("insert into student: %w", err)
		}
	}

	result, err := db.Execute(engine.Select{Name: "student", Columns: []string{"id", "score"}})
	if err != nil {
		return fmt.Errorf("select from student: %w", err)
	}

	fmt.Printf("id\tscore\n")
	for _, row := range result.Rows {
		fmt.Printf("%d\t%d\n", row[0].Int(), row[1].Int())
	}
	fmt.Printf("(%d rows)\n", result.RowCount)
	return nil
}
