package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// Exit codes, kept distinct so cron wrappers can tell failures apart.
const (
	exitWrongArgs  = 1
	exitFetchError = 2
	exitParseError = 3
	exitWriteError = 4
)

var (
	verboseMode     bool
	nativeNewline   bool
	genericFallback bool
	settingsPath    string
)

var verboseEnabled bool

// infoLog prints progress messages when --verbose is set. Warnings and
// errors always print.
func infoLog(format string, args ...interface{}) {
	if verboseEnabled {
		log.Printf(format, args...)
	}
}

var rootCmd = &cobra.Command{
	Use:   "whatif-md [num]",
	Short: "Download a what-if article and convert it to Markdown",
	Long: `Fetches one what-if.xkcd.com article (the latest when no number is
given), converts the article body to Markdown and saves both the raw
HTML and the Markdown under a <num>-<title>-<timestamp> naming scheme.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		num := 0
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				fmt.Fprintf(os.Stderr, "invalid article number: %s\n", args[0])
				cmd.Usage()
				os.Exit(exitWrongArgs)
			}
			num = n
		}
		verboseEnabled = verboseMode
		run(num)
	},
}

func init() {
	rootCmd.Flags().BoolVarP(&verboseMode, "verbose", "v", false, "Print progress messages")
	rootCmd.Flags().BoolVar(&nativeNewline, "native-newline", false,
		"Keep the platform's native end of line instead of forcing LF")
	rootCmd.Flags().BoolVar(&genericFallback, "generic-fallback", false,
		"Convert the whole page generically when the what-if layout is not recognized")
	rootCmd.Flags().StringVar(&settingsPath, "settings", "", "Path to a settings file")
}

func run(num int) {
	settings, err := resolveSettings(settingsPath)
	if err != nil {
		log.Printf("Error: %v", err)
		os.Exit(exitWrongArgs)
	}

	fetcher := NewPageFetcher(settings.BaseURL)

	infoLog("Download article from %s", fetcher.ArticleURL(num))
	pageHTML, resolvedNum, err := fetcher.FetchArticle(num)
	if err != nil {
		log.Printf("Error: %v", err)
		os.Exit(exitFetchError)
	}
	fetchedAt := time.Now()

	converter := &Converter{
		BaseURL:        settings.BaseURL,
		Titles:         fetcher,
		FootnoteIndent: settings.FootnoteIndent,
	}
	article, err := converter.Convert(pageHTML, resolvedNum)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) && genericFallback {
			log.Printf("Warning: %v; falling back to generic conversion", err)
			article, err = NewGenericConverter().Convert(pageHTML, resolvedNum)
		}
		if err != nil {
			log.Printf("Error: %v", err)
			os.Exit(exitParseError)
		}
	}
	article.FetchedAt = fetchedAt

	writer := NewArticleWriter(settings.OutputDirectory, settings.TimezoneOffsetHours, nativeNewline)
	htmlFile, mdFile, err := writer.Save(article)
	if err != nil {
		log.Printf("Error: %v", err)
		os.Exit(exitWriteError)
	}
	log.Printf("Saved %s and %s", htmlFile, mdFile)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitWrongArgs)
	}
}
