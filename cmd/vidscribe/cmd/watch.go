package cmd

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mrsingh-rishi/vidscribe/session"
	"github.com/mrsingh-rishi/vidscribe/types"
)

var (
	watchURL   string
	watchToken string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the progress stream of a session",
	Long: `Connects to /ws/progress and prints every stage event of the session
named by --token (the value of the vidscribe_session cookie).`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchURL, "url", "ws://localhost:3000/ws/progress",
		"progress websocket URL")
	watchCmd.Flags().StringVar(&watchToken, "token", "",
		"session token")
}

func runWatch(cmd *cobra.Command, args []string) error {
	header := http.Header{}
	if watchToken != "" {
		header.Set("Cookie", (&http.Cookie{Name: session.CookieName, Value: watchToken}).String())
	}

	conn, _, err := websocket.DefaultDialer.DialContext(cmd.Context(), watchURL, header)
	if err != nil {
		printError("dial", err)
		return err
	}
	defer conn.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)
	stopped := make(chan struct{})
	go func() {
		<-interrupt
		close(stopped)
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.Close()
	}()

	console := consoleWriter{w: cmd.OutOrStdout()}
	for {
		var ev types.StageEvent
		if err := conn.ReadJSON(&ev); err != nil {
			select {
			case <-stopped:
				return nil
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read progress: %w", err)
		}
		console.WriteJSON(ev)
	}
}
