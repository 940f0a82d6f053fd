package config

const (
	defaultConfigPath         = "~/.config/reelist/config.toml"
	defaultDataDir            = "~/.local/share/reelist"
	defaultLogDir             = "~/.local/share/reelist/logs"
	defaultTMDBLanguage       = "en-US"
	defaultTMDBBaseURL        = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL   = "https://image.tmdb.org/t/p/"
	defaultCacheTTLSeconds    = 600
	defaultUserDataBackend    = BackendFile
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultTelemetryService   = "reelist"
	defaultUserDataFileDir    = "userdata"
	defaultUserDataSQLiteFile = "userdata.db"
)

// Supported user data backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		TMDB: TMDB{
			BaseURL:         defaultTMDBBaseURL,
			ImageBaseURL:    defaultTMDBImageBaseURL,
			Language:        defaultTMDBLanguage,
			CacheTTLSeconds: defaultCacheTTLSeconds,
		},
		UserData: UserData{
			Backend: defaultUserDataBackend,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Telemetry: Telemetry{
			ServiceName: defaultTelemetryService,
		},
	}
}
