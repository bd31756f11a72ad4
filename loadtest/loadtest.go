package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

func main() {
	url := "http://localhost:8080/request"

	payload := map[string]interface{}{
		"height": 512,
		"width":  512,
		"steps":  20,
		"seed":   0,
		"cfg":    5.0,
		"prompt": "a lighthouse on a cliff at dusk, dramatic sky, volumetric light",
		"model":  "flux",
	}

	jsonData, _ := json.Marshal(payload)

	totalRequests := 100
	ratePerSecond := 5

	ticker := time.NewTicker(time.Second / time.Duration(ratePerSecond))
	defer ticker.Stop()

	var wg sync.WaitGroup
	client := &http.Client{}

	for i := 1; i <= totalRequests; i++ {
		<-ticker.C // enforce rate limit

		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
			if err != nil {
				fmt.Printf("Request %d: error creating request: %v\n", n, err)
				return
			}

			req.Header.Set("Content-Type", "application/json")

			resp, err := client.Do(req)
			if err != nil {
				fmt.Printf("Request %d: error sending request: %v\n", n, err)
				return
			}
			defer resp.Body.Close()

			bodyBytes, err := io.ReadAll(resp.Body)
			if err != nil {
				fmt.Printf("Request %d: error reading response: %v\n", n, err)
				return
			}

			fmt.Printf("Request %d -> Status: %d, content: %s\n", n, resp.StatusCode, string(bodyBytes))
		}(i)
	}

	wg.Wait()
	fmt.Println("All requests completed")
}
