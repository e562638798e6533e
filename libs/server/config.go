package server

// HttpServerConfig 对应配置文件中的 [http]
type HttpServerConfig struct {
	Port       int    `json:"port" yaml:"port"`               // HTTP服务器端口
	Address    string `json:"address" yaml:"address"`         // HTTP服务器主机名
	Path       string `json:"path" yaml:"path"`               // HTTP服务器路径
	Cors       bool   `json:"cors" yaml:"cors"`               // 是否启用CORS
	RequestLog bool   `json:"request_log" yaml:"request_log"` // 是否启用请求日志
	Access     bool   `json:"access" yaml:"access"`           // 是否启用访问日志
}

func (c HttpServerConfig) WithDefaults() HttpServerConfig {
	if c.Address == "" {
		c.Address = "0.0.0.0"
	}
	if c.Path == "" {
		c.Path = "/"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	return c
}
