package config

type ServerConfig struct {
	Addr            string `yaml:"addr"`
	BasePath        string `yaml:"base_path"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	RequestTimeout  string `yaml:"request_timeout"`
}

type DatabaseConfig struct {
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	Migrate      bool   `yaml:"migrate"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	Local     bool   `yaml:"local"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

type JWTConfig struct {
	SecretKey       string `yaml:"secret_key"`
	AccessTokenTTL  string `yaml:"access_token_ttl"`
	RefreshTokenTTL string `yaml:"refresh_token_ttl"`
	Issuer          string `yaml:"issuer"`
}

// AdminConfig : bootstrap admin account, created at startup when missing
type AdminConfig struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	Development bool   `yaml:"development"`
}

// TTL : cache and pre-signed URL lifetimes, in seconds
type TTL struct {
	Cache     int `yaml:"cache"`
	Presigned int `yaml:"presigned"`
}

type UploadConfig struct {
	MaxFileSize int64 `yaml:"max_file_size"`
}
