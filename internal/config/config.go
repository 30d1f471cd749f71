package config

import (
	"flag"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	ptr "github.com/dmkhr/mpdgen/internal/lib/utils/pointers"
	"github.com/dmkhr/mpdgen/internal/models"
	"github.com/dmkhr/mpdgen/internal/mpd"
)

type Config struct {
	Env        string `yaml:"env" env-required:"true"`
	HTTPServer `yaml:"http_server"`
	Dash       `yaml:"dash"`
	Content    []ContentItem `yaml:"content"`
}

type HTTPServer struct {
	Address string `yaml:"address" env-default:"localhost:8080"`
}

type Dash struct {
	ManifestPath               string        `yaml:"manifest_path" env-required:"true"`
	Profile                    string        `yaml:"profile" env-default:"live"`
	Type                       string        `yaml:"type" env-default:"dynamic"`
	BaseURLs                   []string      `yaml:"base_urls"`
	MinBufferTime              time.Duration `yaml:"min_buffer_time" env-default:"2s"`
	MinimumUpdatePeriod        time.Duration `yaml:"minimum_update_period" env-default:"5s"`
	TimeShiftBufferDepth       time.Duration `yaml:"time_shift_buffer_depth"`
	SuggestedPresentationDelay time.Duration `yaml:"suggested_presentation_delay"`
	UpdateFreq                 time.Duration `yaml:"update_freq" env-default:"5s"`
}

type ContentItem struct {
	File        string  `yaml:"file"`
	Init        string  `yaml:"init"`
	Template    string  `yaml:"template"`
	ContentType string  `yaml:"content_type"`
	MimeType    string  `yaml:"mime_type"`
	Codecs      string  `yaml:"codecs"`
	Bandwidth   int64   `yaml:"bandwidth"`
	Duration    float64 `yaml:"duration"`
	Start       float64 `yaml:"start"`
}

// MpdOptions converts config values to builder options.
func (c *Config) MpdOptions() (mpd.Options, error) {
	profile, err := mpd.ParseProfile(c.Dash.Profile)
	if err != nil {
		return mpd.Options{}, err
	}

	mpdType, err := mpd.ParseType(c.Dash.Type)
	if err != nil {
		return mpd.Options{}, err
	}

	return mpd.Options{
		Profile: profile,
		Type:    mpdType,
		Params: mpd.Params{
			MinBufferTime:              c.Dash.MinBufferTime.Seconds(),
			MinimumUpdatePeriod:        c.Dash.MinimumUpdatePeriod.Seconds(),
			TimeShiftBufferDepth:       c.Dash.TimeShiftBufferDepth.Seconds(),
			SuggestedPresentationDelay: c.Dash.SuggestedPresentationDelay.Seconds(),
		},
	}, nil
}

// ContentItems converts the content inventory to media info records.
func (c *Config) ContentItems() []models.ContentItem {
	items := make([]models.ContentItem, 0, len(c.Content))

	for _, item := range c.Content {
		info := models.MediaInfo{
			ContentType:   item.ContentType,
			MimeType:      item.MimeType,
			Codecs:        item.Codecs,
			Bandwidth:     item.Bandwidth,
			MediaDuration: item.Duration,
		}
		if item.File != "" {
			info.MediaFileName = ptr.Ptr(item.File)
		}
		if item.Init != "" {
			info.InitSegmentName = ptr.Ptr(item.Init)
		}
		if item.Template != "" {
			info.SegmentTemplate = ptr.Ptr(item.Template)
		}

		items = append(items, models.ContentItem{
			MediaInfo: info,
			Start:     item.Start,
		})
	}

	return items
}

func MustLoad() *Config {
	// .env is optional
	_ = godotenv.Load()

	configPath := fetchConfigPath()
	if configPath == "" {
		panic("config path is empty")
	}

	return MustLoadPath(configPath)
}

func MustLoadPath(configPath string) *Config {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		panic("cannot read config: " + err.Error())
	}

	return &cfg
}

// fetchConfigPath fetches config path from command line flag or environment variable.
// Priority: flag > env > default.
// Default value is empty string.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
