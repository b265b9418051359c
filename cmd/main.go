package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"golang.org/x/text/language"

	"github.com/MimeLyc/live-caption-translator/internal/caption"
	"github.com/MimeLyc/live-caption-translator/internal/config"
	"github.com/MimeLyc/live-caption-translator/internal/llm"
	"github.com/MimeLyc/live-caption-translator/internal/persistence"
	"github.com/MimeLyc/live-caption-translator/internal/service"
	"github.com/MimeLyc/live-caption-translator/internal/translator"
	"github.com/MimeLyc/live-caption-translator/pkg/log"
)

// playbackClock advances with wall time from process start, standing in
// for the video element's clock.
type playbackClock struct {
	start time.Time
}

func (c playbackClock) CurrentTime() float64 {
	return time.Since(c.start).Seconds()
}

// consoleRenderer prints caption changes to stdout.
type consoleRenderer struct {
	mu      sync.Mutex
	last    string
	visible bool
}

func (r *consoleRenderer) Show(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.visible && r.last == text {
		return
	}
	r.last = text
	r.visible = true
	fmt.Println("[caption]", text)
}

func (r *consoleRenderer) Hide() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.visible {
		return
	}
	r.visible = false
	fmt.Println("[caption] (hidden)")
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatal("Failed to load configuration: %v", err)
	}

	if len(os.Args) < 3 {
		log.Fatal("usage: %s <video-id> <timedtext.json>", os.Args[0])
	}
	videoID, path := os.Args[1], os.Args[2]

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatal("Failed to read caption file: %v", err)
	}
	track, err := caption.ParseTimedText(data, videoID, caption.KindASR, language.Und)
	if err != nil {
		log.Fatal("Failed to parse caption file: %v", err)
	}
	log.Info("Loaded track for video %s: %d cues, language %s", videoID, len(track.Cues), track.Language)

	llmClient, err := llm.NewClient(&llm.Config{
		APIKey:      cfg.LLM.APIKey,
		APIURL:      cfg.LLM.APIURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
		SiteURL:     cfg.LLM.SiteURL,
		AppName:     cfg.LLM.AppName,
	})
	if err != nil {
		log.Fatal("Failed to create LLM client: %v", err)
	}

	reseg := translator.NewLLMResegmenter(llmClient)
	trans := translator.NewLLMTranslator(llmClient, translator.Options{
		TargetLanguage: cfg.Translate.TargetLanguage,
		SourceLanguage: track.Language,
	})

	ctx := context.Background()

	var cache persistence.Store
	if cfg.Cache.Enabled {
		sqlStore, err := persistence.NewSQLiteStore(cfg.Cache.Path)
		if err != nil {
			log.Warn("Translation cache unavailable: %v", err)
		} else {
			defer sqlStore.Close()
			cache = sqlStore

			c := cron.New()
			janitor := persistence.NewJanitor(sqlStore, c, cfg.Cache.SweepCronExpr, time.Duration(cfg.Cache.TTLHours)*time.Hour)
			if err := janitor.Schedule(ctx); err != nil {
				log.Warn("Failed to schedule cache sweep: %v", err)
			} else {
				c.Start()
				defer c.Stop()
			}
		}
	}

	renderer := &consoleRenderer{}
	session := service.NewSession(*cfg, reseg, trans, playbackClock{start: time.Now()}, renderer, cache)
	defer session.Close()

	session.LoadTrack(ctx, track)
	if err := session.Translate(ctx); err != nil {
		log.Error("Translation run failed: %v", err)
	}

	progress := session.Progress()
	log.Info("Translated %d/%d cues", progress.Translated, progress.Total)
}
