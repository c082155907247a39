package logger

// Console implements a console based logger.
type Console struct {
	Enabled          bool `toml:"enabled" mapstructure:"enabled"`
	UseConsoleWriter bool `toml:"useconsolewriter" mapstructure:"useconsolewriter"`
}

// LogFile implements a file based logger.
type LogFile struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Path    string `toml:"path" mapstructure:"path"`

	ErrorLog        string `toml:"error" mapstructure:"error"`
	ErrorMaxSize    int    `toml:"errorMaxSize" mapstructure:"errormaxsize"`
	ErrorMaxBackups int    `toml:"errorMaxBackups" mapstructure:"errormaxbackups"`
	ErrorMaxAge     int    `toml:"errorMaxAge" mapstructure:"errormaxage"`

	InfoLog        string `toml:"info" mapstructure:"info"`
	InfoMaxSize    int    `toml:"infoMaxSize" mapstructure:"infomaxsize"`
	InfoMaxBackups int    `toml:"infoMaxBackups" mapstructure:"infomaxbackups"`
	InfoMaxAge     int    `toml:"infoMaxAge" mapstructure:"infomaxage"`

	TraceLog        string `toml:"trace" mapstructure:"trace"`
	TraceMaxSize    int    `toml:"traceMaxSize" mapstructure:"tracemaxsize"`
	TraceMaxBackups int    `toml:"traceMaxBackups" mapstructure:"tracemaxbackups"`
	TraceMaxAge     int    `toml:"traceMaxAge" mapstructure:"tracemaxage"`

	WarnLog        string `toml:"warn" mapstructure:"warn"`
	WarnMaxSize    int    `toml:"warnMaxSize" mapstructure:"warnmaxsize"`
	WarnMaxBackups int    `toml:"warnMaxBackups" mapstructure:"warnmaxbackups"`
	WarnMaxAge     int    `toml:"warnMaxAge" mapstructure:"warnmaxage"`
}

// Config implements the logger config.
type Config struct {
	LogLevel string `toml:"loglevel" mapstructure:"loglevel"` // trace, debug, info, warn, error.

	ReportCaller bool `toml:"reportcaller" mapstructure:"reportcaller"`

	AppName     string `toml:"appname" mapstructure:"appname"`
	ServiceName string `toml:"servicename" mapstructure:"servicename"`

	// Console used mainly for docker and dev.
	Console Console `toml:"console" mapstructure:"console"`

	// File holds the rolling file logging settings.
	File LogFile `toml:"file" mapstructure:"file"`
}
