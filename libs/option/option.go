/*
 * Copyright 2022 The Go Authors<36625090@qq.com>. All rights reserved.
 * Use of this source code is governed by a MIT-style
 * license that can be found in the LICENSE file.
 */

package option

import (
	"io"
	"os"

	"github.com/jessevdk/go-flags"
	"go.uber.org/zap/zapcore"
)

// Http 命令行覆盖配置文件中的 [http]，零值表示不覆盖
type Http struct {
	Address string `long:"http.address" description:"Address for the HTTP server listening" `
	Port    int    `long:"http.port" description:"Port for the HTTP server listening" `
	Cors    bool   `long:"http.cors" description:"Support CORS access" `
}

// Log logging settings
type Log struct {
	Level string `long:"log.level" description:"Overrides the log level" choice:"debug" choice:"info" choice:"warn" choice:"error" `
}

// ZapLevel 未指定 --log.level 时 ok 为 false
func (l Log) ZapLevel() (level zapcore.Level, ok bool) {
	if l.Level == "" {
		return zapcore.InfoLevel, false
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return zapcore.InfoLevel, false
	}
	return level, true
}

// Options 服务参数选项
type Options struct {
	ConfigFile string `long:"config" short:"c" env:"runConfig" description:"Config file for startup"`
	Log        Log    `group:"log"`
	Http       Http   `group:"http"`
	Version    bool   `long:"version" short:"v" description:"Show the program version"`

	parser *flags.Parser
	stdout io.Writer
}

func NewOptions() *Options {
	opts := &Options{stdout: os.Stdout}
	opts.parser = flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	opts.parser.SubcommandsOptional = true
	return opts
}

func (m *Options) SetOutput(w io.Writer) {
	m.stdout = w
}

func (m *Options) AddCommand(name, short, long string, cmd flags.Commander) error {
	_, err := m.parser.AddCommand(name, short, long, cmd)
	return err
}

// Parse 解析 os.Args，--help 时打印帮助并退出
func (m *Options) Parse() error {
	err := m.ParseArgs(os.Args[1:])
	if flagError, ok := err.(*flags.Error); ok && flagError.Type == flags.ErrHelp {
		os.Exit(0)
	}
	return err
}

// ParseArgs 解析参数并执行选中的子命令
func (m *Options) ParseArgs(args []string) error {
	_, err := m.parser.ParseArgs(args)
	if nil == err {
		return nil
	}
	if flagError, ok := err.(*flags.Error); ok {
		if flagError.Type == flags.ErrHelp {
			m.parser.WriteHelp(m.stdout)
			return err
		}
		io.WriteString(m.stdout, "Fault: \n"+err.Error()+"\n")
	}
	return err
}
