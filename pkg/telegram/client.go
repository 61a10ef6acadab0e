package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tgsentry/pkg/telegram/types"

	"github.com/sirupsen/logrus"
)

// BotClient talks to the Telegram Bot API over HTTP. One instance is safe
// for the single-threaded poller plus the concurrent attachment fetches.
type BotClient struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *logrus.Logger
}

const defaultBaseURL = "https://api.telegram.org"

func NewClient(baseURL, token string, httpClient *http.Client) types.Client {
	return NewClientWithLogger(baseURL, token, httpClient, nil)
}

func NewClientWithLogger(baseURL, token string, httpClient *http.Client, logger *logrus.Logger) types.Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.WarnLevel)
	}

	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &BotClient{
		baseURL: baseURL,
		token:   token,
		client:  httpClient,
		logger:  logger,
	}
}

func (c *BotClient) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
}

func (c *BotClient) GetUpdates(ctx context.Context, offset int64, timeoutSec int) ([]types.Update, error) {
	endpoint := c.methodURL("getUpdates")

	params := url.Values{}
	params.Set("offset", fmt.Sprintf("%d", offset))
	if timeoutSec > 0 {
		params.Set("timeout", fmt.Sprintf("%d", timeoutSec))
	}
	params.Set("allowed_updates", `["message","business_message","edited_business_message","deleted_business_messages"]`)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to poll updates: %w", err)
	}
	defer resp.Body.Close()

	var result types.UpdatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode updates response: %w", err)
	}

	if !result.OK {
		return nil, fmt.Errorf("telegram API error: status %d, %s", result.ErrorCode, result.Description)
	}

	return result.Result, nil
}

func (c *BotClient) GetFile(ctx context.Context, fileID string) (string, error) {
	endpoint := c.methodURL("getFile")

	params := url.Values{}
	params.Set("file_id", fileID)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file: %w", err)
	}
	defer resp.Body.Close()

	var result types.FileResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode file response: %w", err)
	}

	if !result.OK {
		return "", fmt.Errorf("telegram API error: status %d, %s", result.ErrorCode, result.Description)
	}

	if result.Result.FilePath == "" {
		return "", fmt.Errorf("file metadata for %s has no path", fileID)
	}

	return result.Result.FilePath, nil
}

func (c *BotClient) DownloadFile(ctx context.Context, remotePath string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, remotePath)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file body: %w", err)
	}

	return data, nil
}

func (c *BotClient) SendText(ctx context.Context, chatID int64, text string) error {
	return c.sendMessage(ctx, chatID, 0, text)
}

func (c *BotClient) SendReply(ctx context.Context, chatID, replyToMessageID int64, text string) error {
	return c.sendMessage(ctx, chatID, replyToMessageID, text)
}

func (c *BotClient) sendMessage(ctx context.Context, chatID, replyToMessageID int64, text string) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	if replyToMessageID != 0 {
		payload["reply_to_message_id"] = replyToMessageID
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.methodURL("sendMessage"), bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	return c.checkSendResponse(resp)
}

func (c *BotClient) SendDocument(ctx context.Context, chatID int64, filePath, caption string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("chat_id", fmt.Sprintf("%d", chatID)); err != nil {
		return fmt.Errorf("failed to write chat_id field: %w", err)
	}
	if caption != "" {
		if err := writer.WriteField("caption", caption); err != nil {
			return fmt.Errorf("failed to write caption field: %w", err)
		}
	}

	part, err := writer.CreateFormFile("document", filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to copy document body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.methodURL("sendDocument"), &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.logger.WithFields(logrus.Fields{
		"chatID": chatID,
		"file":   filepath.Base(filePath),
	}).Debug("Sending document")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send document: %w", err)
	}
	defer resp.Body.Close()

	return c.checkSendResponse(resp)
}

func (c *BotClient) checkSendResponse(resp *http.Response) error {
	var result types.SendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode send response: %w", err)
	}

	if !result.OK {
		return fmt.Errorf("telegram API error: status %d, %s", result.ErrorCode, result.Description)
	}

	return nil
}
