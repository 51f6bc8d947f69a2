package internal

import "time"

type Config struct {
	BufferSize        int           `env:"BUFFER_SIZE,required=true"`
	LimitMessages     *int          `env:"LIMIT_MESSAGES"`
	RestartInterval   time.Duration `env:"RESTART_INTERVAL,required=true"`
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL,required=true"`
	TicketKey         string        `env:"TICKET_KEY,required=true"`
	TicketDuration    time.Duration `env:"TICKET_DURATION,required=true"`
	BadgerFilepath    string        `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath     string        `env:"BLUGE_FILEPATH,required=true"`
	LogLevel          string        `env:"LOG_LEVEL,required=true"`
	DebugPort         int           `env:"DEBUG_PORT,required=true"`
	ParticipantID     string        `env:"PARTICIPANT_ID,required=true"`
	ParticipantName   string        `env:"PARTICIPANT_NAME,required=true"`
}
