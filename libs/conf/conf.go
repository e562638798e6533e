package conf

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/stardustagi/HelpDeskGPT/utils"
)

const ConfigEnv = "runConfig"

var (
	config map[string]interface{}
	mu     sync.RWMutex
)

// Init 从环境变量 runConfig 指定的文件加载配置
func Init() {
	if err := Load(os.Getenv(ConfigEnv)); err != nil {
		panic(err)
	}
}

// Load 解析 TOML 配置文件，[global] 中 app_name/app_version 必填
func Load(configPath string) error {
	if configPath == "" {
		return errors.New("config file path is empty, set --config or " + ConfigEnv)
	}
	parsed := make(map[string]interface{})
	if _, err := toml.DecodeFile(configPath, &parsed); err != nil {
		return errors.Wrapf(err, "decode config %s", configPath)
	}
	globalInfo, ok := parsed["global"].(map[string]interface{})
	if !ok {
		return errors.New("global configuration is missing in the config file")
	}
	appName, ok := globalInfo["app_name"].(string)
	if !ok {
		return errors.New("app name is missing in the global configuration")
	}
	appVersion, ok := globalInfo["app_version"].(string)
	if !ok {
		return errors.New("app version is missing in the global configuration")
	}
	redisKeyPrefix, ok := globalInfo["redis_key_prefix"].(string)
	if !ok {
		redisKeyPrefix = appName
	}

	mu.Lock()
	config = parsed
	mu.Unlock()

	os.Setenv("APP_NAME", appName)
	os.Setenv("APP_VERSION", appVersion)
	os.Setenv("REDIS_KEY_PREFIX", redisKeyPrefix)
	return nil
}

// Get 返回某个配置段的 JSON 编码，不存在时返回 nil
func Get(key string) []byte {
	mu.RLock()
	loaded := config != nil
	mu.RUnlock()
	if !loaded {
		Init()
	}

	mu.RLock()
	defer mu.RUnlock()
	if value, exists := config[key]; exists {
		bytes, err := json.Marshal(value)
		if err != nil {
			return nil
		}
		return bytes
	}
	return nil
}

// Section 把配置段解析到 T，配置段缺失时返回 T 的零值
func Section[T any](key string) (T, error) {
	data := Get(key)
	if data == nil {
		var zero T
		return zero, nil
	}
	v, err := utils.Bytes2Struct[T](data)
	if err != nil {
		return v, errors.Wrapf(err, "parse [%s] configuration", key)
	}
	return v, nil
}
