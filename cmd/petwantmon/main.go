package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/petwant.go/pkg/comm/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/petwant/"
)

func init() {
	if val := os.Getenv("PETWANT_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub("#", func(topic string, payload []byte) {
		switch {
		case strings.HasSuffix(topic, "/meta"):
			if len(payload) == 0 {
				log.Printf("%s: gone", topic)
			} else {
				log.Printf("%s: %s", topic, string(payload))
			}
			return
		case strings.Contains(topic, "/cmd/"):
			log.Printf("%s: %s", topic, string(payload))
			return
		}
		s, err := mqtt.DecodeStruct(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		log.Printf("%s: %s", topic, mqtt.FormatStruct(s))
	})
	if err := q.Connect(); err != nil {
		log.Fatalln(err)
	}
	<-(chan struct{})(nil)
}
