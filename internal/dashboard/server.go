package dashboard

import (
	"math"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/Creator-ad-biz/reddit-trend-analyzer/internal/storage"
)

// StartServer renders the latest stored run as charts on every request.
func StartServer(store *storage.Store, port string) error {
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		runID, err := store.LatestRunID()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if runID == 0 {
			http.Error(w, "no analysis runs yet", http.StatusServiceUnavailable)
			return
		}

		// 1. Subreddit Dominance
		pie := charts.NewPie()
		pie.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{Title: "Subreddit Dominance"}),
			charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		)
		subCounts, err := store.SubredditCounts(runID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		var pieItems []opts.PieData
		for sub, n := range subCounts {
			pieItems = append(pieItems, opts.PieData{Name: sub, Value: n})
		}
		pie.AddSeries("Posts", pieItems)

		// 2. Trending Keywords
		kwBar := charts.NewBar()
		kwBar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Trending Keywords"}))
		keywords, err := store.Keywords(runID, storage.ScopeGlobal)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		var kwX []string
		var kwY []opts.BarData
		for _, e := range keywords {
			kwX = append(kwX, e.Keyword)
			kwY = append(kwY, opts.BarData{Value: e.Count})
		}
		kwBar.SetXAxis(kwX).AddSeries("Mentions", kwY)

		// 3. Emerging Topics
		emBar := charts.NewBar()
		emBar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Emerging Topics"}))
		emerging, err := store.Keywords(runID, storage.ScopeEmerging)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		var emX []string
		var emY []opts.BarData
		for _, e := range emerging {
			emX = append(emX, e.Keyword)
			emY = append(emY, opts.BarData{Value: e.Count})
		}
		emBar.SetXAxis(emX).AddSeries("Mentions", emY)

		// 4. Hottest Posts
		postBar := charts.NewBar()
		postBar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Hottest Posts"}))
		posts, err := store.TopPosts(runID, 10)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		var postX []string
		var postY []opts.BarData
		for _, p := range posts {
			title := []rune(p.Title)
			if len(title) > 40 {
				title = append(title[:40], '…')
			}
			postX = append(postX, string(title))
			postY = append(postY, opts.BarData{Value: math.Round(p.TrendingScore*100) / 100})
		}
		postBar.SetXAxis(postX).AddSeries("Trending Score", postY)

		pie.Render(w)
		kwBar.Render(w)
		emBar.Render(w)
		postBar.Render(w)
	})

	return http.ListenAndServe(":"+port, nil)
}
