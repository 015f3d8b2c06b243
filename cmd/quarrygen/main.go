// Command quarrygen generates typed model bindings from a table schema.
//
// Usage:
//
//	quarrygen -schema schema.yaml -out ./app
//	quarrygen -schema schema.yaml -out ./app -watch
//
// With -watch the schema file is watched and bindings are regenerated on
// every change.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/fsnotify/fsnotify"

	"github.com/syssam/quarry/gen"
)

func main() {
	var (
		schemaPath = flag.String("schema", "schema.yaml", "schema file")
		outDir     = flag.String("out", ".", "output directory")
		watch      = flag.Bool("watch", false, "regenerate on schema changes")
		workers    = flag.Int("workers", 0, "parallel workers (0 = GOMAXPROCS)")
	)
	flag.Parse()

	ctx := context.Background()
	if err := generate(ctx, *schemaPath, *outDir, *workers); err != nil {
		log.Fatal(err)
	}
	if !*watch {
		return
	}
	if err := watchSchema(ctx, *schemaPath, *outDir, *workers); err != nil {
		log.Fatal(err)
	}
}

func generate(ctx context.Context, schemaPath, outDir string, workers int) error {
	s, err := gen.Load(schemaPath)
	if err != nil {
		return err
	}
	g := gen.New(s, outDir)
	if workers > 0 {
		g = g.WithWorkers(workers)
	}
	if err := g.Generate(ctx); err != nil {
		return err
	}
	log.Printf("generated %d tables into %s", len(s.Tables), outDir)
	return nil
}

func watchSchema(ctx context.Context, schemaPath, outDir string, workers int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(schemaPath); err != nil {
		return err
	}
	log.Printf("watching %s", schemaPath)
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := generate(ctx, schemaPath, outDir, workers); err != nil {
				// Keep watching; a half-saved schema often fails to parse.
				log.Printf("generate: %v", err)
			}
			// Editors replace files on save; re-add in case the inode changed.
			if _, err := os.Stat(schemaPath); err == nil {
				_ = w.Add(schemaPath)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch: %v", err)
		}
	}
}
