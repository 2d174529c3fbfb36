package config

import "os"

func IsDebug() bool {
	return os.Getenv("LUMOS_DEBUG") == "1"
}
