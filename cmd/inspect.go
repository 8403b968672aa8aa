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
	"encoding/json"
	"fmt"
	"github.com/packagewjx/traffic-classifier/internal/artifact"
	"github.com/packagewjx/traffic-classifier/internal/classify"
	"github.com/packagewjx/traffic-classifier/pkg/core"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"io"
)

const FlagOutput = "output"

const (
	OutputYaml = "yaml"
	OutputJson = "json"
)

var inspectOutput string

type bundleSummary struct {
	Source     artifact.SourceType `json:"source" yaml:"source"`
	Features   []string            `json:"features" yaml:"features"`
	Scaler     string              `json:"scaler" yaml:"scaler"`
	Estimators int                 `json:"estimators" yaml:"estimators"`
	Labels     []labelSummary      `json:"labels" yaml:"labels"`
}

type labelSummary struct {
	Application string        `json:"application" yaml:"application"`
	Priority    core.Priority `json:"priority" yaml:"priority"`
}

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "检查模型文件",
	Long: "按照与serve相同的方式读取并校验模型，输出特征顺序、scaler类型、决策树数量，\n" +
		"以及每个应用对应的优先级。模型有误时返回错误。",
	RunE: func(cmd *cobra.Command, args []string) error {
		if inspectOutput != OutputYaml && inspectOutput != OutputJson {
			return fmt.Errorf("输出格式应为yaml或json，现在为%q", inspectOutput)
		}

		config := artifactConfig()
		bundle, err := artifact.LoadFromConfig(&config, zap.NewNop())
		if err != nil {
			return err
		}

		return writeSummary(cmd.OutOrStdout(), summarize(config.Source, bundle), inspectOutput)
	},
}

func summarize(source artifact.SourceType, bundle *artifact.Bundle) *bundleSummary {
	summary := &bundleSummary{
		Source:     source,
		Features:   bundle.FeatureNames,
		Scaler:     string(bundle.Scaler.Type()),
		Estimators: bundle.Classifier.NumEstimators(),
	}
	for _, application := range bundle.Encoder.Classes() {
		summary.Labels = append(summary.Labels, labelSummary{
			Application: application,
			Priority:    classify.PriorityOf(application),
		})
	}
	return summary
}

func writeSummary(w io.Writer, summary *bundleSummary, format string) error {
	if format == OutputJson {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summary)
	}
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	return encoder.Encode(summary)
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVarP(&inspectOutput, FlagOutput, "o", OutputYaml, "输出格式，可选值：yaml、json")
}

