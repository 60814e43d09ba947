package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/xiaot623/assistant/internal/gateway"
)

func newChatCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Open an interactive WebSocket chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, err := wsURL(opts.gatewayURL)
			if err != nil {
				return err
			}
			client, err := dialChat(addr)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Hello(opts.userID); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Session established: %s\n", client.sessionID)
			fmt.Fprintln(out, "Type a message and press Enter to send. /quit to exit.")

			go client.ReadReplies(out)
			return client.SendLines(cmd.InOrStdin(), out)
		},
	}
}

// wsURL turns the gateway base URL into its /ws endpoint.
func wsURL(gatewayURL string) (string, error) {
	u, err := url.Parse(gatewayURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid gateway url %q", gatewayURL)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String(), nil
}

type chatClient struct {
	conn      *websocket.Conn
	sessionID string
}

func dialChat(addr string) (*chatClient, error) {
	conn, _, err := websocket.DefaultDialer.Dial(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	return &chatClient{conn: conn}, nil
}

func (c *chatClient) Close() error {
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return c.conn.Close()
}

// Hello binds the connection to the user's session and waits for the ack.
func (c *chatClient) Hello(userID string) error {
	msg := gateway.HelloMessage{
		BaseMessage: gateway.BaseMessage{Type: gateway.TypeHello, Ts: time.Now().UnixMilli()},
		UserID:      userID,
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("write hello: %w", err)
	}

	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("read hello_ack: %w", err)
	}
	var frame gateway.ErrorMessage
	if err := json.Unmarshal(data, &frame); err != nil {
		return fmt.Errorf("unmarshal hello_ack: %w", err)
	}
	switch frame.Type {
	case gateway.TypeHelloAck:
		c.sessionID = frame.SessionID
		return nil
	case gateway.TypeError:
		return fmt.Errorf("hello failed: %s - %s", frame.Code, frame.Message)
	default:
		return fmt.Errorf("expected hello_ack, got: %s", frame.Type)
	}
}

// SendLines sends every non-empty input line as a chat message.
func (c *chatClient) SendLines(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		input := strings.TrimSpace(scanner.Text())
		switch input {
		case "":
			continue
		case "/quit":
			fmt.Fprintln(out, "Bye!")
			return nil
		}

		msg := gateway.ChatMessage{
			BaseMessage: gateway.BaseMessage{
				Type:      gateway.TypeChat,
				Ts:        time.Now().UnixMilli(),
				SessionID: c.sessionID,
				RequestID: fmt.Sprintf("req_%d", time.Now().UnixNano()),
			},
			Message: input,
		}
		if err := c.conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("send: %w", err)
		}
	}
}

// ReadReplies prints replies and errors until the connection closes.
func (c *chatClient) ReadReplies(out io.Writer) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var base gateway.BaseMessage
		if err := json.Unmarshal(data, &base); err != nil {
			continue
		}
		switch base.Type {
		case gateway.TypeReply:
			var reply gateway.ReplyMessage
			if json.Unmarshal(data, &reply) == nil {
				fmt.Fprintf(out, "\n[%s] %s\n> ", reply.AgentUsed, reply.Response)
			}
		case gateway.TypeError:
			var frame gateway.ErrorMessage
			if json.Unmarshal(data, &frame) == nil {
				fmt.Fprintf(out, "\nerror: %s\n> ", frame.Message)
			}
		}
	}
}
