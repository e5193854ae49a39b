package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/thilak-404/AGENTICEYE-M4/internal/analysis"
	"github.com/thilak-404/AGENTICEYE-M4/internal/config"
	"github.com/thilak-404/AGENTICEYE-M4/internal/sources"
)

func main() {
	query := flag.String("query", "meal prep", "search term sent to searchers and the interest source")
	videoURL := flag.String("url", "", "content URL used to probe comment sources; comment sources are skipped when empty")
	timeout := flag.Duration("timeout", 60*time.Second, "overall probe timeout")
	flag.Parse()

	fmt.Println("🔍 ViralEdge - Source Connectivity Probe")
	fmt.Println("=======================================")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	service, err := analysis.NewService(cfg, nil)
	if err != nil {
		log.Fatalf("Failed to initialize analysis service: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	fmt.Println("\n📡 Probing sources...")
	fmt.Println(strings.Repeat("-", 40))

	for _, src := range service.Sources() {
		probeSource(ctx, src, *query, *videoURL)
	}

	fmt.Println("\n✅ Probe completed!")
}

func probeSource(ctx context.Context, src sources.Source, query, videoURL string) {
	if !src.IsEnabled() {
		fmt.Printf("🔸 %s... ⚠️  DISABLED (missing credentials)\n", src.GetName())
		return
	}

	if searcher, ok := src.(sources.MentionSearcher); ok {
		fmt.Printf("🔸 %s search... ", src.GetName())
		results, err := searcher.Search(ctx, query, 5)
		switch {
		case err != nil:
			fmt.Printf("❌ ERROR: %v\n", err)
		case len(results) == 0:
			fmt.Printf("✅ SUCCESS (no results)\n")
		default:
			fmt.Printf("✅ SUCCESS (%d results)\n", len(results))
			fmt.Printf("   📝 Sample: %q\n", results[0].Title)
		}
	}

	if interest, ok := src.(sources.InterestSource); ok {
		fmt.Printf("🔸 %s interest... ", src.GetName())
		values, err := interest.Interest(ctx, []string{query})
		if err != nil {
			fmt.Printf("❌ ERROR: %v\n", err)
		} else {
			fmt.Printf("✅ SUCCESS (peak %.0f)\n", sources.SumInterest(values))
		}
	}

	if commenter, ok := src.(sources.CommentSource); ok {
		if videoURL == "" || analysis.DetectPlatform(videoURL) != src.GetName() {
			return
		}
		fmt.Printf("🔸 %s comments... ", src.GetName())
		feed, err := commenter.FetchComments(ctx, videoURL, 20)
		switch {
		case err != nil:
			fmt.Printf("❌ ERROR: %v\n", err)
		case feed.Error != "":
			fmt.Printf("❌ ERROR: %s\n", feed.Error)
		default:
			fmt.Printf("✅ SUCCESS (%d records)\n", len(feed.Items))
		}
	}
}
