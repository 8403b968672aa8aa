package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/packagewjx/traffic-classifier/pkg/core"
	"github.com/packagewjx/traffic-classifier/pkg/server"
	"github.com/pkg/errors"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseUrl = "http://localhost:5000"

const defaultTimeout = 10 * time.Second

// 服务器返回了非200的响应
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("服务器返回%d：%s", e.StatusCode, e.Message)
}

func NewApiClient(baseUrl string) server.API {
	if baseUrl == "" {
		baseUrl = DefaultBaseUrl
	}
	return &apiClient{
		baseUrl:    strings.TrimRight(baseUrl, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

var _ server.API = &apiClient{}

type apiClient struct {
	baseUrl    string
	httpClient *http.Client
}

func (a *apiClient) Health(ctx context.Context) (*core.HealthStatus, error) {
	dest := &core.HealthStatus{}
	if err := a.do(ctx, http.MethodGet, server.PathHealth, nil, dest); err != nil {
		return nil, err
	}
	return dest, nil
}

func (a *apiClient) Classify(ctx context.Context, features core.Features) (*core.Classification, error) {
	body, err := json.Marshal(features)
	if err != nil {
		return nil, errors.Wrap(err, "序列化特征失败")
	}

	dest := &core.Classification{}
	if err = a.do(ctx, http.MethodPost, server.PathClassify, body, dest); err != nil {
		return nil, err
	}
	return dest, nil
}

func (a *apiClient) do(ctx context.Context, method, path string, body []byte, dest interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	request, err := http.NewRequestWithContext(ctx, method, a.baseUrl+path, reader)
	if err != nil {
		return errors.Wrap(err, "创建请求失败")
	}
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := a.httpClient.Do(request)
	if err != nil {
		return errors.Wrap(err, "请求时出现异常")
	}
	defer response.Body.Close()

	content, err := io.ReadAll(response.Body)
	if err != nil {
		return errors.Wrap(err, "读取时出现异常")
	}

	if response.StatusCode != http.StatusOK {
		errResp := &core.ErrorResponse{}
		if json.Unmarshal(content, errResp) != nil || errResp.Error == "" {
			errResp.Error = strings.TrimSpace(string(content))
		}
		return &APIError{StatusCode: response.StatusCode, Message: errResp.Error}
	}

	if err = json.Unmarshal(content, dest); err != nil {
		return errors.Wrap(err, fmt.Sprintf("解析json异常，json为\n%s", string(content)))
	}
	return nil
}
