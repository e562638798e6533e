package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/stardustagi/HelpDeskGPT/libs/conf"
	"github.com/stardustagi/HelpDeskGPT/libs/logs"
	"github.com/stardustagi/HelpDeskGPT/libs/option"
	"github.com/stardustagi/HelpDeskGPT/libs/redis"
	"github.com/stardustagi/HelpDeskGPT/libs/server"
	"github.com/stardustagi/HelpDeskGPT/llm/clients"
	"github.com/stardustagi/HelpDeskGPT/llm/models"
	"github.com/stardustagi/HelpDeskGPT/services"
	"go.uber.org/zap/zapcore"
)

type app struct {
	opts *option.Options
	out  io.Writer
}

func (a *app) register() error {
	if err := a.opts.AddCommand("ask", "Send one prompt and print the reply", "", &askCommand{app: a}); err != nil {
		return err
	}
	return a.opts.AddCommand("serve", "Run the help desk chat HTTP service", "", &serveCommand{app: a})
}

// loadConfig 加载配置文件并初始化日志；未指定配置文件时日志只输出 warn 以上到控制台
func (a *app) loadConfig(required bool) error {
	if a.opts.ConfigFile == "" {
		if required {
			return errors.New("--config is required")
		}
		logs.InitWith(a.logConfig(logs.LoggerConfig{Level: int(zapcore.WarnLevel)}))
		return nil
	}
	if err := conf.Load(a.opts.ConfigFile); err != nil {
		return err
	}
	logCfg, err := conf.Section[logs.LoggerConfig]("log")
	if err != nil {
		return err
	}
	logs.InitWith(a.logConfig(logCfg))
	return nil
}

func (a *app) logConfig(cfg logs.LoggerConfig) logs.LoggerConfig {
	if level, ok := a.opts.Log.ZapLevel(); ok {
		cfg.Level = int(level)
	}
	return cfg
}

func (a *app) gptConfig() (clients.GPTConfig, error) {
	if a.opts.ConfigFile == "" {
		return clients.GPTConfig{}, nil
	}
	return conf.Section[clients.GPTConfig]("gpt")
}

type askCommand struct {
	app     *app
	Prompt  string   `long:"prompt" short:"p" required:"true" description:"User message to send"`
	Model   string   `long:"model" short:"m" description:"Overrides the configured model" choice:"gpt-3.5-turbo" choice:"gpt-4o" choice:"gpt-4-turbo"`
	Context []string `long:"context" description:"System instruction, may be repeated"`
}

func (c *askCommand) Execute(args []string) error {
	if err := c.app.loadConfig(false); err != nil {
		return err
	}
	cfg, err := c.app.gptConfig()
	if err != nil {
		return err
	}
	if c.Model != "" {
		cfg.Model = c.Model
	}
	if len(c.Context) > 0 {
		cfg.Context = c.Context
	}
	client, err := clients.NewClientFromConfig(cfg, logs.GetLogger("gpt_client"))
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.SendChats(context.Background(), []models.ChatMessage{models.NewUserMessage(c.Prompt)})
	if err != nil {
		fmt.Fprintf(c.app.out, "Got an error: %v\n", err)
		return err
	}
	if reply, ok := resp.FirstMessage(); ok {
		fmt.Fprintln(c.app.out, reply.Content)
	} else {
		fmt.Fprintln(c.app.out, "No choices received!")
	}
	return nil
}

type serveCommand struct {
	app *app
}

func (c *serveCommand) Execute(args []string) error {
	if err := c.app.loadConfig(true); err != nil {
		return err
	}
	logger := logs.GetLogger("helpdesk")

	svc, client, err := c.app.newHelpDeskService()
	if err != nil {
		return err
	}
	defer client.Close()
	bk, err := c.app.newBackend()
	if err != nil {
		return err
	}
	svc.RegisterRoutes(bk)
	svc.Start()

	srv := server.NewServer()
	go srv.HandleSignal()
	errCh := make(chan error, 1)
	go func() {
		errCh <- bk.Start()
	}()

	select {
	case err = <-errCh:
		logger.Error("http server exited", logs.ErrorInfo(err))
	case <-srv.Ctx.Done():
	}
	srv.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	bk.Stop(ctx)
	svc.Stop()
	logger.Info("server shutdown completed")
	return err
}

// newHelpDeskService 返回的 client 由调用方在退出时 Close
func (a *app) newHelpDeskService() (*services.HelpDeskService, *clients.Client, error) {
	gptCfg, err := a.gptConfig()
	if err != nil {
		return nil, nil, err
	}
	hdCfg, err := conf.Section[services.HelpDeskConfig]("helpdesk")
	if err != nil {
		return nil, nil, err
	}

	var store services.HistoryStore
	switch hdCfg.Store {
	case "", "memory":
		store = services.NewMemoryHistoryStore()
	case "redis":
		redisCfg, err := conf.Section[redis.RedisConfig]("redis")
		if err != nil {
			return nil, nil, err
		}
		if redisCfg.Prefix == "" {
			redisCfg.Prefix = os.Getenv("REDIS_KEY_PREFIX")
		}
		store, err = services.NewRedisHistoryStore(redis.NewClient(redisCfg, logs.GetLogger("redis")), hdCfg.HistoryTTL)
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, errors.Errorf("unknown helpdesk store %q", hdCfg.Store)
	}

	client, err := clients.NewClientFromConfig(gptCfg, logs.GetLogger("gpt_client"))
	if err != nil {
		return nil, nil, err
	}
	// [helpdesk].context 优先，其次 [gpt].context，都没有时用默认人设
	if len(hdCfg.Context) > 0 || len(gptCfg.Context) == 0 {
		client = client.WithConversationContext(hdCfg.ContextMessages())
	}
	return services.NewHelpDeskService(client, store, hdCfg.Greeting, logs.GetLogger("helpdesk")), client, nil
}

func (a *app) newBackend() (*server.Backend, error) {
	httpCfg, err := conf.Section[server.HttpServerConfig]("http")
	if err != nil {
		return nil, err
	}
	if a.opts.Http.Address != "" {
		httpCfg.Address = a.opts.Http.Address
	}
	if a.opts.Http.Port != 0 {
		httpCfg.Port = a.opts.Http.Port
	}
	if a.opts.Http.Cors {
		httpCfg.Cors = true
	}
	return server.NewBackend(httpCfg, logs.GetLogger("http"))
}
