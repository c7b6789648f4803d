package config

import (
	"fmt"
	"os"
)

func Template() string {
	return specterTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(specterTemplate), 0o600)
}

const specterTemplate = `auto_respawn = true
yaw_correction = 25.0
tick_interval = "50ms"
protocol_version = 291
world_name = "specter"
max_health = 20
admin_addr = "127.0.0.1:7020"
admin_token = ""
cors_origins = ["http://localhost:3000"]

[[sessions]]
name = "specter-1"
address = "SPECTER"
port = 19133

[[sessions]]
name = "specter-2"
address = "SPECTER"
port = 19133
`
