package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"
)

// CLI flags
var (
	apiURL = flag.String("api-url", "http://localhost:8000", "ListingPress API base URL")
	runs   = flag.Int("runs", 3, "Number of runs per URL for averaging")
	output = flag.String("output", "benchmark-results.json", "JSON output file path")
	urls   = flag.String("urls", "", "Comma-separated listing URLs (default: built-in sample)")
)

// Sample listings covering the common property types.
var defaultURLs = []string{
	"https://www.propertyguru.com.sg/listing/for-sale-the-sail-marina-bay-24937291",
	"https://www.propertyguru.com.sg/listing/for-rent-parc-esta-24812345",
	"https://www.propertyguru.com.sg/listing/hdb-for-sale-punggol-way-24755510",
}

// --- Request / Response types (mirrors models package) ---

type scrapeRequest struct {
	URL string `json:"url"`
}

type scrapeResponse struct {
	Success bool         `json:"success"`
	Outcome string       `json:"outcome"`
	Listing *listing     `json:"listing"`
	Timing  timingInfo   `json:"timing"`
	Error   *errorDetail `json:"error,omitempty"`
}

type listing struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

type timingInfo struct {
	TotalMs int64 `json:"total_ms"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Benchmark result types ---

type runResult struct {
	Run        int    `json:"run"`
	TotalMs    int64  `json:"total_ms"`
	Outcome    string `json:"outcome"`
	Images     int    `json:"images"`
	DescLength int    `json:"description_length"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
}

type urlAverages struct {
	TotalMs    float64 `json:"total_ms"`
	Images     float64 `json:"images"`
	DescLength float64 `json:"description_length"`
}

type urlResult struct {
	URL      string       `json:"url"`
	Runs     []runResult  `json:"runs"`
	Averages *urlAverages `json:"averages,omitempty"`
}

type benchmarkReport struct {
	Timestamp  string      `json:"timestamp"`
	APIURL     string      `json:"api_url"`
	RunsPerURL int         `json:"runs_per_url"`
	Results    []urlResult `json:"results"`
}

func main() {
	flag.Parse()

	targets := defaultURLs
	if *urls != "" {
		targets = strings.Split(*urls, ",")
	}

	fmt.Println("=== ListingPress Scrape Benchmark ===")
	fmt.Printf("API URL:   %s\n", *apiURL)
	fmt.Printf("Runs/URL:  %d\n", *runs)
	fmt.Printf("Output:    %s\n", *output)
	fmt.Println()

	// Quick connectivity check.
	if err := checkAPI(*apiURL); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot reach API at %s: %v\n", *apiURL, err)
		fmt.Fprintf(os.Stderr, "Make sure listingpress is running (e.g. go run ./cmd/listingpress)\n")
		os.Exit(1)
	}

	report := benchmarkReport{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		APIURL:     *apiURL,
		RunsPerURL: *runs,
	}

	for _, u := range targets {
		u = strings.TrimSpace(u)
		fmt.Printf("Benchmarking %s ...\n", u)
		ur := urlResult{URL: u}

		for i := 1; i <= *runs; i++ {
			fmt.Printf("  Run %d/%d ... ", i, *runs)
			rr := benchmarkURL(u, i)
			if rr.Success {
				fmt.Printf("OK  %dms  %d images\n", rr.TotalMs, rr.Images)
			} else {
				fmt.Printf("%s: %s\n", strings.ToUpper(rr.Outcome), rr.Error)
			}
			ur.Runs = append(ur.Runs, rr)
		}

		ur.Averages = computeAverages(ur.Runs)
		report.Results = append(report.Results, ur)
		fmt.Println()
	}

	printTable(report.Results)

	if err := writeJSON(*output, report); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing JSON output: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("\nDetailed results written to %s\n", *output)
}

func checkAPI(baseURL string) error {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(baseURL + "/api/health")
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health returned %d", resp.StatusCode)
	}
	return nil
}

func benchmarkURL(url string, run int) runResult {
	rr := runResult{Run: run}

	bodyBytes, err := json.Marshal(scrapeRequest{URL: url})
	if err != nil {
		rr.Error = fmt.Sprintf("marshal error: %v", err)
		return rr
	}

	req, err := http.NewRequest("POST", *apiURL+"/api/scrape", bytes.NewReader(bodyBytes))
	if err != nil {
		rr.Error = fmt.Sprintf("request error: %v", err)
		return rr
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 180 * time.Second}
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		rr.Error = fmt.Sprintf("request failed: %v", err)
		return rr
	}
	defer resp.Body.Close()

	var sr scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		rr.Error = fmt.Sprintf("decode error: %v", err)
		return rr
	}

	rr.Success = sr.Success
	rr.Outcome = sr.Outcome
	rr.TotalMs = sr.Timing.TotalMs
	if rr.TotalMs == 0 {
		rr.TotalMs = time.Since(start).Milliseconds()
	}
	if sr.Listing != nil {
		rr.Images = len(sr.Listing.Images)
		rr.DescLength = len([]rune(sr.Listing.Description))
	}
	if sr.Error != nil {
		rr.Error = sr.Error.Message
	}

	return rr
}

func computeAverages(runs []runResult) *urlAverages {
	var successCount int
	var avg urlAverages

	for _, r := range runs {
		if !r.Success {
			continue
		}
		successCount++
		avg.TotalMs += float64(r.TotalMs)
		avg.Images += float64(r.Images)
		avg.DescLength += float64(r.DescLength)
	}

	if successCount == 0 {
		return nil
	}

	n := float64(successCount)
	avg.TotalMs /= n
	avg.Images /= n
	avg.DescLength /= n
	return &avg
}

func printTable(results []urlResult) {
	fmt.Println(strings.Repeat("─", 85))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "URL\tAvg Latency\tImages\tDesc Len\tOutcome\n")
	fmt.Fprintf(w, "───\t───────────\t──────\t────────\t───────\n")

	for _, r := range results {
		outcome := dominantOutcome(r.Runs)
		if r.Averages == nil {
			fmt.Fprintf(w, "%s\tFAILED\t-\t-\t%s\n", truncateURL(r.URL, 40), outcome)
			continue
		}

		fmt.Fprintf(w, "%s\t%dms\t%.1f\t%s\t%s\n",
			truncateURL(r.URL, 40),
			int64(r.Averages.TotalMs),
			r.Averages.Images,
			formatInt(int(r.Averages.DescLength)),
			outcome,
		)
	}

	w.Flush()
	fmt.Println(strings.Repeat("─", 85))
}

func dominantOutcome(runs []runResult) string {
	counts := map[string]int{}
	for _, r := range runs {
		if r.Outcome != "" {
			counts[r.Outcome]++
		}
	}
	best, bestCount := "-", 0
	for outcome, count := range counts {
		if count > bestCount {
			best = outcome
			bestCount = count
		}
	}
	return best
}

func truncateURL(u string, max int) string {
	if len(u) <= max {
		return u
	}
	return u[:max-3] + "..."
}

func formatInt(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var result []byte
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}
	return string(result)
}

func writeJSON(path string, report benchmarkReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
