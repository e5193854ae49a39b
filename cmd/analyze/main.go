package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/thilak-404/AGENTICEYE-M4/internal/analysis"
	"github.com/thilak-404/AGENTICEYE-M4/internal/config"
	"github.com/thilak-404/AGENTICEYE-M4/internal/logging"
	"github.com/thilak-404/AGENTICEYE-M4/internal/models"
	"github.com/thilak-404/AGENTICEYE-M4/internal/storage"
)

func main() {
	url := flag.String("url", "", "content URL to analyze (required)")
	platform := flag.String("platform", "", "youtube, tiktok or reddit; detected from the URL when empty")
	tier := flag.String("tier", "Free", "summary tier: Free, Diamond or Solitaire")
	limit := flag.Int("limit", 0, "maximum comments to fetch; 0 uses COMMENT_LIMIT")
	generate := flag.Bool("generate", false, "request the AI summary")
	outDir := flag.String("out", "", "directory to archive the report in")
	asJSON := flag.Bool("json", false, "print the full report as JSON instead of a summary")
	flag.Parse()

	if *url == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if _, err := logging.Setup(logging.Options{Debug: cfg.Debug}); err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	var archive storage.StorageInterface
	if *outDir != "" {
		fileStorage, err := storage.NewFileStorage(*outDir)
		if err != nil {
			log.Fatalf("Failed to open output directory: %v", err)
		}
		archive = fileStorage
	}

	service, err := analysis.NewService(cfg, archive)
	if err != nil {
		log.Fatalf("Failed to initialize analysis service: %v", err)
	}

	report, err := service.Analyze(context.Background(), analysis.Request{
		URL:      *url,
		Platform: *platform,
		Tier:     *tier,
		Limit:    *limit,
		Generate: *generate,
	})
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	if *asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			log.Fatalf("Failed to encode report: %v", err)
		}
		return
	}

	printReport(report)
	if archive != nil {
		fmt.Printf("\n💾 Archived under %s as %s\n", *outDir, storage.ReportName(report))
	}
}

func printReport(report *models.AnalysisReport) {
	fmt.Println("\n" + strings.Repeat("=", 70))
	fmt.Println("📊 VIRALEDGE ANALYSIS")
	fmt.Println(strings.Repeat("=", 70))
	if report.Platform.Title != "" {
		fmt.Printf("🎬 %s\n", report.Platform.Title)
	}
	fmt.Printf("🔗 %s (%s)\n", report.Platform.URL, report.Platform.Source)
	fmt.Printf("🕒 Analyzed: %s\n", report.AnalyzedAt)
	fmt.Printf("💬 Comments: %d fetched, %d analyzed\n", report.Stats.CommentsFetched, report.Stats.CommentsAnalyzed)

	combined := report.Engagement.Combined
	fmt.Printf("👍 Likes: %d total, %.1f average\n", combined.TotalLikes, combined.AvgLikes)

	sentiment := report.NLP.Sentiment
	fmt.Printf("💭 Sentiment: %d%% positive, %d%% negative, %d%% neutral\n",
		sentiment.Positive, sentiment.Negative, sentiment.Neutral)

	fmt.Printf("\n📈 Trend: %d%% %s\n", report.Summary.TrendProbability, report.Summary.TrendType)
	fmt.Printf("   %s\n", report.Summary.TrendReason)

	if len(report.NLP.Topics) > 0 {
		fmt.Println("\n🏷️  Topics:")
		for i, topic := range report.NLP.Topics {
			if i >= 8 {
				fmt.Printf("   ... and %d more topics\n", len(report.NLP.Topics)-8)
				break
			}
			fmt.Printf("   • %-24s %d mentions (%.0f%%)\n", topic.Topic, topic.MentionCount, topic.Percentage)
		}
	}

	if len(report.NLP.Questions) > 0 {
		fmt.Println("\n❓ Questions:")
		for i, question := range report.NLP.Questions {
			if i >= 5 {
				fmt.Printf("   ... and %d more questions\n", len(report.NLP.Questions)-5)
				break
			}
			fmt.Printf("   %d. %s\n", i+1, question.Text)
		}
	}

	if len(report.Platform.SourceErrors) > 0 {
		fmt.Println("\n⚠️  Degraded sources:")
		for source, reason := range report.Platform.SourceErrors {
			fmt.Printf("   • %s: %s\n", source, reason)
		}
	}

	if gen := report.Generation; gen != nil {
		fmt.Printf("\n🤖 Viral score: %d (%s, %s)\n", gen.ViralPrediction.Score, gen.ViralPrediction.Category, gen.Provenance)
		for i, idea := range gen.Recommendations.NextBestContent {
			if i >= 5 {
				fmt.Printf("   ... and %d more ideas\n", len(gen.Recommendations.NextBestContent)-5)
				break
			}
			fmt.Printf("   %d. %s (%d)\n", i+1, idea.Title, idea.Score)
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 70))
}
