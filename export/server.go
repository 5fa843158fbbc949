package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/golang/glog"
)

const (
	contentType             = "application/json"
	CollectEndpoint         = "xtiming/v1/collect"
	defaultSendRecordAmount = 100
)

// Server sends records in batches to the collect endpoint of an xtiming
// server.
type Server struct {
	Server            string
	SendRecordsAmount int
	// Client defaults to http.DefaultClient.
	Client *http.Client
}

type collectResponse struct {
	Status      string `json:"status"`
	RecordCount int    `json:"recordCount"`
}

func (s *Server) Write(ctx context.Context, records <-chan Record) error {
	sendRecordsAmount := defaultSendRecordAmount
	if s.SendRecordsAmount > 0 {
		sendRecordsAmount = s.SendRecordsAmount
	}

	var batch []Record
	for r := range records {
		batch = append(batch, r)
		if len(batch) < sendRecordsAmount {
			continue // we haven't collected enough records to send yet
		}
		if err := s.send(ctx, batch); err != nil {
			glog.Warningf("error sending records: %s\n", err)
		}
		batch = nil
	}
	if len(batch) > 0 {
		if err := s.send(ctx, batch); err != nil {
			glog.Warningf("error sending records: %s\n", err)
		}
	}
	return nil
}

func (s *Server) send(ctx context.Context, batch []Record) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("error marshalling records to JSON: %s", err)
	}

	url := fmt.Sprintf("%s/%s", strings.TrimRight(s.Server, "/"), CollectEndpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("error POSTing records: %s", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading POST body: %s", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server answered %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	collected := collectResponse{}
	if err := json.Unmarshal(respBody, &collected); err != nil {
		return fmt.Errorf("error decoding server response: %s", err)
	}
	glog.Infof("submitted %d records to server %s", collected.RecordCount, s.Server)
	return nil
}
