package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/cbodonnell/firefades/pkg/messages"
	"github.com/gorilla/websocket"
)

const usage = `Commands:
  start                 start the game
  propose <seat>...     propose a mission team (leader only)
  approve | reject      vote on the proposed team
  succeed | fail        vote on the mission (team members only)
  leave                 leave the game
  exit                  quit`

func main() {
	server := flag.String("server", "http://localhost:8080", "Server base URL")
	nickname := flag.String("nickname", "", "Nickname to play as")
	gameCode := flag.String("game", "", "Code of the game to join; a new game is created when empty")
	flag.Parse()

	session, err := issueSession(*server, *nickname)
	if err != nil {
		fmt.Println("Error getting a session:", err)
		return
	}
	fmt.Printf("Signed in as %s\n", session.UserID)

	code := strings.ToUpper(strings.TrimSpace(*gameCode))
	if code == "" {
		code, err = createGame(*server, session.Token)
		if err != nil {
			fmt.Println("Error creating game:", err)
			return
		}
		fmt.Printf("Created game %s\n", code)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, err := dial(ctx, *server, session.Token, code)
	if err != nil {
		fmt.Println("Error connecting to websocket server:", err)
		return
	}
	defer conn.Close()

	if err := send(conn, messages.MessageTypeClientJoinLobby, code, nil); err != nil {
		fmt.Println("Error joining game:", err)
		return
	}

	go func(conn *websocket.Conn, cancel context.CancelFunc) {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				fmt.Println("Server disconnected:", err)
				cancel()
				return
			}
			msg := &messages.Message{}
			if err := json.Unmarshal(data, msg); err != nil {
				fmt.Println("Error decoding message:", err)
				continue
			}
			fmt.Printf("%s: %s\n", msg.Type, msg.Payload)
		}
	}(conn, cancel)

	go func(conn *websocket.Conn, cancel context.CancelFunc) {
		fmt.Println(usage)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) == 0 {
				continue
			}
			if fields[0] == "exit" {
				fmt.Println("Received exit command, exiting.")
				cancel()
				return
			}
			msgType, payload, err := parseCommand(fields)
			if err != nil {
				fmt.Println(err)
				continue
			}
			if err := send(conn, msgType, code, payload); err != nil {
				fmt.Println("Error sending message:", err)
				cancel()
				return
			}
		}
		cancel()
	}(conn, cancel)

	// Gracefully handle Ctrl+C to stop the program
	stopSignal := make(chan os.Signal, 1)
	signal.Notify(stopSignal, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stopSignal:
		fmt.Println("Received stop signal, exiting.")
	case <-ctx.Done():
	}
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func parseCommand(fields []string) (messages.MessageType, interface{}, error) {
	switch fields[0] {
	case "start":
		return messages.MessageTypeClientStartGame, nil, nil
	case "leave":
		return messages.MessageTypeClientLeaveLobby, nil, nil
	case "propose":
		seats := make([]int, 0, len(fields)-1)
		for _, field := range fields[1:] {
			seat, err := strconv.Atoi(field)
			if err != nil {
				return "", nil, fmt.Errorf("invalid seat %q", field)
			}
			seats = append(seats, seat)
		}
		return messages.MessageTypeClientProposeTeam, &messages.ClientProposeTeam{Seats: seats}, nil
	case "approve", "reject":
		return messages.MessageTypeClientVoteOnTeam, &messages.ClientVoteOnTeam{Approved: fields[0] == "approve"}, nil
	case "succeed", "fail":
		return messages.MessageTypeClientVoteOnMission, &messages.ClientVoteOnMission{Success: fields[0] == "succeed"}, nil
	default:
		return "", nil, fmt.Errorf("unknown command %q\n%s", fields[0], usage)
	}
}

func send(conn *websocket.Conn, msgType messages.MessageType, code string, payload interface{}) error {
	msg := &messages.Message{Type: msgType, GameCode: code}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %v", err)
		}
		msg.Payload = b
	}
	return conn.WriteJSON(msg)
}

type sessionResponse struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
}

func issueSession(server string, nickname string) (*sessionResponse, error) {
	resp, err := http.PostForm(server+"/sessions/anonymous", url.Values{"nickname": {nickname}})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	session := &sessionResponse{}
	if err := json.NewDecoder(resp.Body).Decode(session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %v", err)
	}
	return session, nil
}

func createGame(server string, token string) (string, error) {
	req, err := http.NewRequest(http.MethodPost, server+"/games", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	created := struct {
		Code string `json:"code"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode game: %v", err)
	}
	return created.Code, nil
}

func dial(ctx context.Context, server string, token string, code string) (*websocket.Conn, error) {
	u, err := url.Parse(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %v", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	u.RawQuery = url.Values{
		"token":    {token},
		"game":     {code},
		"encoding": {"json"},
	}.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
