// notifytail streams admin notifications to the terminal: it fetches the
// current list once, then tails live pushes over the gateway. Useful for
// checking the pipeline without opening the admin UI.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evergreenrx.com/pharmanotify/pkg/notifyclient"
)

func main() {
	baseURL := flag.String("api", "http://localhost:8080/api", "REST base URL")
	wsURL := flag.String("ws", "ws://localhost:8080/api/notifications/ws", "gateway URL")
	token := flag.String("token", os.Getenv("PHARMANOTIFY_TOKEN"), "bearer token")
	flag.Parse()

	if *token == "" {
		log.Fatal("no token: pass -token or set PHARMANOTIFY_TOKEN")
	}

	controller := notifyclient.New(notifyclient.Options{
		BaseURL: *baseURL,
		WSURL:   *wsURL + "?token=" + *token,
		Token:   func() string { return *token },
		Hooks: notifyclient.Hooks{
			OnToast: func(n notifyclient.Notification, severity notifyclient.Severity) {
				fmt.Printf("[%s] %-8s #%d %s — %s\n",
					n.CreatedAt.Format(time.TimeOnly), severity, n.ID, n.Title, n.Message)
			},
			OnConnectedChange: func(connected bool) {
				if connected {
					log.Println("connected")
				} else {
					log.Println("disconnected, retrying...")
				}
			},
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := controller.FetchAll(ctx); err != nil {
		log.Printf("initial fetch failed: %v", err)
	}
	cancel()

	for _, n := range controller.Notifications() {
		state := "unread"
		if n.Read {
			state = "read"
		}
		fmt.Printf("[%s] %-8s #%d %s (%s)\n",
			n.CreatedAt.Format(time.TimeOnly), n.Type, n.ID, n.Title, state)
	}
	fmt.Printf("%d unread, tailing...\n", controller.UnreadCount())

	controller.Start()
	defer controller.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
}
