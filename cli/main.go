// Package main provides an interactive terminal client for the answer
// service: it opens a conversation and streams answers to the terminal.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
)

var (
	serverURL = flag.String("server", "http://localhost:8080", "Answer service base URL")
	chatbot   = flag.String("chatbot", "support", "Chatbot name")
	cookie    = flag.String("cookie", "cli", "Guest cookie identifying this session")
)

func main() {
	flag.Parse()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("\nBye.")
		os.Exit(0)
	}()

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()

	fmt.Println(boldGreen("answerd chat"))
	fmt.Printf("Chatbot: %s\n", boldCyan(*chatbot))
	fmt.Println("Type your question and press Enter. Type 'exit' or press Ctrl+C to quit.")
	fmt.Println()

	client := &http.Client{Timeout: 10 * time.Minute}
	scanner := bufio.NewScanner(os.Stdin)

	var conversationID string
	for {
		fmt.Print(boldGreen("You: "))
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if question == "exit" || question == "quit" {
			break
		}

		if conversationID == "" {
			id, name, err := createConversation(client, question)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to create conversation: %v\n", err)
				continue
			}
			conversationID = id
			if name != "" {
				fmt.Println(faint("conversation: " + name))
			}
		}

		fmt.Print(boldCyan("Bot: "))
		if err := streamAnswer(client, conversationID, question); err != nil {
			fmt.Fprintf(os.Stderr, "\nfailed to get answer: %v\n", err)
			continue
		}
		fmt.Println()
		fmt.Println()
	}
}

func createConversation(client *http.Client, firstQuestion string) (id, name string, err error) {
	body, _ := json.Marshal(map[string]string{
		"question": firstQuestion,
		"cookie":   *cookie,
	})
	url := fmt.Sprintf("%s/chatbots/%s/conversations", *serverURL, *chatbot)
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}
	if resp.StatusCode != http.StatusCreated {
		return "", "", fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	var out struct {
		Content struct {
			ConversationID string `json:"conversation_id"`
			Name           string `json:"name"`
		} `json:"content"`
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", "", err
	}
	return out.Content.ConversationID, out.Content.Name, nil
}

func streamAnswer(client *http.Client, conversationID, question string) error {
	body, _ := json.Marshal(map[string]string{"question": question})
	url := fmt.Sprintf("%s/chatbots/%s/conversations/%s/answer", *serverURL, *chatbot, conversationID)
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	buf := make([]byte, 512)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			os.Stdout.Write(buf[:n])
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
