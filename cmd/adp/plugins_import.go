package main

// Blank imports ensure component init() registration runs for the CLI
// binary.
import (
	_ "github.com/adp-project/adp/internal/plugins/csvfile"
	_ "github.com/adp-project/adp/internal/plugins/elastic"
	_ "github.com/adp-project/adp/internal/plugins/fieldops"
	_ "github.com/adp-project/adp/internal/plugins/gitlog"
	_ "github.com/adp-project/adp/internal/plugins/httpfetch"
	_ "github.com/adp-project/adp/internal/plugins/jsonl"
	_ "github.com/adp-project/adp/internal/plugins/kafka"
	_ "github.com/adp-project/adp/internal/plugins/mongo"
)
