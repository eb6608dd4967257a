package config

import (
	"encoding/json"
	"os"

	"filevault/internal/flagx"
)

// JsonConfig is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct.
type JsonConfig struct {
	EndpointAddr    string `json:"endpoint_addr"`
	DatabaseDSN     string `json:"database_dsn"`
	SecretKey       string `json:"secret_key"`
	MasterSecret    string `json:"master_secret"`
	MasterSalt      string `json:"master_salt"`
	S3RootUser      string `json:"s3_root_user"`
	S3RootPassword  string `json:"s3_root_password"`
	S3Bucket        string `json:"s3_bucket"`
	S3Region        string `json:"s3_region"`
	S3BaseEndpoint  string `json:"s3_base_endpoint"`
	CORSAllowOrigin string `json:"cors_allow_origin"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. An unreadable or
// invalid file panics: a half-applied config is worse than no server.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	// Only fields present in the file override the defaults.
	overlay := []struct {
		dst *string
		src string
	}{
		{&config.EndpointAddr, c.EndpointAddr},
		{&config.DatabaseDSN, c.DatabaseDSN},
		{&config.SecretKey, c.SecretKey},
		{&config.MasterSecret, c.MasterSecret},
		{&config.MasterSalt, c.MasterSalt},
		{&config.S3RootUser, c.S3RootUser},
		{&config.S3RootPassword, c.S3RootPassword},
		{&config.S3Bucket, c.S3Bucket},
		{&config.S3Region, c.S3Region},
		{&config.S3BaseEndpoint, c.S3BaseEndpoint},
		{&config.CORSAllowOrigin, c.CORSAllowOrigin},
	}
	for _, o := range overlay {
		if o.src != "" {
			*o.dst = o.src
		}
	}
}
