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
	"context"
	"encoding/json"
	"fmt"
	"github.com/packagewjx/traffic-classifier/pkg/client"
	"github.com/packagewjx/traffic-classifier/pkg/core"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	FlagServer  = "server"
	FlagFeature = "feature"
	FlagFile    = "file"
	FlagTimeout = "timeout"
)

var (
	serverUrl      string
	featureArgs    []string
	featureFile    string
	requestTimeout time.Duration
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "向分类服务器发送一次分类请求",
	Long: "特征可以通过--feature name=value逐个指定，也可以通过--file指定一个json文件，两者同时使用时\n" +
		"--feature指定的值覆盖文件中的值。结果以json格式输出。",
	Example: "traffic-classifier classify --feature duration=1.5 --feature pkt_rate=120",
	RunE: func(cmd *cobra.Command, args []string) error {
		features, err := collectFeatures(featureFile, featureArgs)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		result, err := client.NewApiClient(serverUrl).Classify(ctx, features)
		if err != nil {
			return err
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	},
}

func collectFeatures(file string, pairs []string) (core.Features, error) {
	features := core.Features{}
	if file != "" {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.Wrapf(err, "读取特征文件%s失败", file)
		}
		if err = json.Unmarshal(content, &features); err != nil {
			return nil, errors.Wrapf(err, "特征文件%s格式有误", file)
		}
	}

	for _, pair := range pairs {
		idx := strings.Index(pair, "=")
		if idx <= 0 {
			return nil, fmt.Errorf("特征%q格式有误，应为name=value", pair)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(pair[idx+1:]), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "特征%s的值不是数字", pair[:idx])
		}
		features[strings.TrimSpace(pair[:idx])] = value
	}
	return features, nil
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVarP(&serverUrl, FlagServer, "s", client.DefaultBaseUrl, "分类服务器地址")
	classifyCmd.Flags().StringArrayVarP(&featureArgs, FlagFeature, "f", nil, "特征，格式为name=value，可以指定多次")
	classifyCmd.Flags().StringVar(&featureFile, FlagFile, "", "特征json文件")
	classifyCmd.Flags().DurationVar(&requestTimeout, FlagTimeout, 10*time.Second, "请求超时时间")
}
