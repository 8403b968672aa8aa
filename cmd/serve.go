/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"github.com/packagewjx/traffic-classifier/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"math"
)

const (
	FlagPort            = "port"
	FlagMaxBodyBytes    = "max-body-bytes"
	FlagShutdownTimeout = "shutdown-timeout"
)

const (
	KeyPort            = "server.port"
	KeyMaxBodyBytes    = "server.maxBodyBytes"
	KeyShutdownTimeout = "server.shutdownTimeout"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "流量分类服务器",
	Long: "启动时读取分类器、scaler与label encoder，任何一个读取失败都不会启动。\n" +
		"服务器提供GET /health与POST /classify两个接口，/classify接收以特征名称为键的json对象，\n" +
		"返回识别出的应用、置信度、优先级与推理耗时。/metrics提供Prometheus监控数据。\n",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		config, err := serverConfig()
		if err != nil {
			return err
		}
		s, err := server.NewServer(config, logger)
		if err != nil {
			logger.Error("服务器启动失败", zap.Error(err))
			return err
		}

		return s.Start()
	},
}

func serverConfig() (*server.ServerConfig, error) {
	port := viper.GetUint(KeyPort)
	if port > math.MaxUint16 {
		return nil, fmt.Errorf("端口号应该在1024到65535之间，现在为%d", port)
	}
	return &server.ServerConfig{
		Port:            uint16(port),
		MaxBodyBytes:    viper.GetInt64(KeyMaxBodyBytes),
		ShutdownTimeout: viper.GetDuration(KeyShutdownTimeout),
		Artifact:        artifactConfig(),
	}, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Uint16P(FlagPort, "p", server.DefaultPort,
		"服务端口号，监听所有网卡")
	serveCmd.Flags().Int64(FlagMaxBodyBytes, server.DefaultMaxBodyBytes,
		"分类请求体的最大字节数")
	serveCmd.Flags().Duration(FlagShutdownTimeout, server.DefaultShutdownTimeout,
		"收到退出信号后等待请求处理完毕的时间")

	_ = viper.BindPFlag(KeyPort, serveCmd.Flags().Lookup(FlagPort))
	_ = viper.BindPFlag(KeyMaxBodyBytes, serveCmd.Flags().Lookup(FlagMaxBodyBytes))
	_ = viper.BindPFlag(KeyShutdownTimeout, serveCmd.Flags().Lookup(FlagShutdownTimeout))
}
