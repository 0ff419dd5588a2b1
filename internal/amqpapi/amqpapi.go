// Package amqpapi is the AMQP front end: consumes request.build_processor,
// builds a sequence the same way internal/httpapi does, and publishes the
// result to report.build_processor (spec §6). Grounded on
// original_source/main.py's build_sequence/build_situation_definition/
// build_goals_definition request-merging logic, re-expressed for a message
// body instead of an HTTP path+query.
package amqpapi

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/mars-robotics/buildseq/internal/apperr"
	"github.com/mars-robotics/buildseq/internal/config"
	"github.com/mars-robotics/buildseq/internal/model"
	"github.com/mars-robotics/buildseq/internal/sequence"
)

const (
	// RequestQueue is the queue/routing key the consumer binds.
	RequestQueue = "request.build_processor"
	// ReportRoutingKey is the routing key responses are published under
	// when a request carries no reply-to header.
	ReportRoutingKey = "report.build_processor"
	// replyToHeader names the header carrying the caller's reply topic
	// (spec §6: "reply topic carried in message headers") — distinct from
	// amqp091-go's own ReplyTo delivery field, since the spec calls out
	// headers specifically.
	replyToHeader = "reply-to"
)

// requestBody is the AMQP message body shape. Target selects which of the
// three sequence kinds applies — the HTTP front end gets this from the URL
// path, but a message has no path, so it travels in the body instead.
type requestBody struct {
	Target           string                `json:"target"`
	InitialSituation *initialSituationBody `json:"initialSituation"`
	GoalsDefinition  *goalsDefinitionBody  `json:"goalsDefinition"`
}

type initialSituationBody struct {
	WorkSituation  map[string]string `json:"workSituation"`
	RobotSituation map[string]string `json:"robotSituation"`
}

type goalsDefinitionBody struct {
	DefinitionType string            `json:"definitionType"`
	Definition     map[string]string `json:"definition"`
}

type successReport struct {
	BuildProcess []sequence.Row `json:"buildProcess"`
}

type failureReport struct {
	Status string      `json:"status"`
	Error  errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string   `json:"kind"`
	Stack   []string `json:"stack"`
	Message string   `json:"message"`
}

// Consumer runs the request.build_processor → report.build_processor loop.
type Consumer struct {
	channel  *amqp.Channel
	exchange string
	unit     *sequence.Unit
	defaults config.DefaultParameters
}

// Dial opens an AMQP connection at uri.
func Dial(uri string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, apperr.New(apperr.KindDBNotReachable, []string{"amqpapi.Dial"}, "%v", err)
	}
	return conn, nil
}

// NewConsumer declares the exchange/queue topology and returns a Consumer
// bound to it.
func NewConsumer(conn *amqp.Connection, exchangeName, exchangeType string, unit *sequence.Unit, defaults config.DefaultParameters) (*Consumer, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, apperr.Wrap("amqpapi.NewConsumer", err)
	}
	if err := ch.ExchangeDeclare(exchangeName, exchangeType, true, false, false, false, nil); err != nil {
		return nil, apperr.Wrap("amqpapi.NewConsumer", err)
	}
	queue, err := ch.QueueDeclare(RequestQueue, true, false, false, false, nil)
	if err != nil {
		return nil, apperr.Wrap("amqpapi.NewConsumer", err)
	}
	if err := ch.QueueBind(queue.Name, RequestQueue, exchangeName, false, nil); err != nil {
		return nil, apperr.Wrap("amqpapi.NewConsumer", err)
	}
	return &Consumer{channel: ch, exchange: exchangeName, unit: unit, defaults: defaults}, nil
}

// Run consumes messages until ctx is cancelled (spec §5: abort at the next
// I/O boundary — here, between deliveries).
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.channel.Consume(RequestQueue, "buildseq", false, false, false, false, nil)
	if err != nil {
		return apperr.Wrap("amqpapi.Run", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.handle(ctx, delivery)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, delivery amqp.Delivery) {
	correlationID := delivery.CorrelationId
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	report, err := c.build(ctx, delivery.Body)
	replyKey := ReportRoutingKey
	if rt, ok := delivery.Headers[replyToHeader].(string); ok && rt != "" {
		replyKey = rt
	}

	var payload []byte
	if err != nil {
		var appErr *apperr.Error
		detail := errorDetail{Kind: "internal", Message: err.Error()}
		if errors.As(err, &appErr) {
			detail = errorDetail{Kind: string(appErr.Kind), Stack: appErr.Stack, Message: appErr.Message}
		}
		log.Error().Str("kind", detail.Kind).Str("correlationId", correlationID).Strs("stack", detail.Stack).Msg(detail.Message)
		payload, _ = json.Marshal(failureReport{Status: "FAIL", Error: detail})
	} else {
		payload, _ = json.Marshal(successReport{BuildProcess: report})
	}

	publishErr := c.channel.PublishWithContext(ctx, c.exchange, replyKey, false, false, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: correlationID,
		Body:          payload,
	})
	if publishErr != nil {
		log.Error().Err(publishErr).Msg("publishing build_processor report")
		_ = delivery.Nack(false, true)
		return
	}
	_ = delivery.Ack(false)
}

func (c *Consumer) build(ctx context.Context, body []byte) ([]sequence.Row, error) {
	var req requestBody
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, apperr.New(apperr.KindValidationBody, []string{"amqpapi.build"}, "decoding request: %v", err)
		}
	}

	definitionType := c.defaults.Goals.DefaultType
	definition := map[string]string{}
	if req.GoalsDefinition != nil {
		if req.GoalsDefinition.DefinitionType != "" {
			definitionType = req.GoalsDefinition.DefinitionType
		}
		for k, v := range req.GoalsDefinition.Definition {
			definition[k] = v
		}
	}
	kindKey := req.Target + "_" + definitionType
	kind, ok := sequence.ParseKind(kindKey)
	if !ok {
		return nil, apperr.New(apperr.KindValidationBody, []string{"amqpapi.build"}, "unknown sequence kind %q", kindKey)
	}

	area := sequence.BuildAreaDef(mergeDefault(c.defaultDefinition(kindKey), definition))

	var overlayWork, overlayRobot map[string]string
	if req.InitialSituation != nil {
		overlayWork = req.InitialSituation.WorkSituation
		overlayRobot = req.InitialSituation.RobotSituation
	}
	workStates := mergeSituation(c.defaults.Situations.WorkSituation, overlayWork)
	carrierStates := mergeSituation(c.defaults.Situations.RobotSituation, overlayRobot)

	plan, err := c.unit.Build(ctx, kind, area, carrierStates, workStates)
	if err != nil {
		return nil, apperr.Wrap("amqpapi.build", err)
	}
	return sequence.Serialize(plan), nil
}

func (c *Consumer) defaultDefinition(kindKey string) map[string]string {
	switch kindKey {
	case "work_area":
		return c.defaults.Goals.WorkArea
	case "station_area":
		return c.defaults.Goals.StationArea
	case "approach_area":
		return c.defaults.Goals.ApproachArea
	default:
		return nil
	}
}

func mergeDefault(defaults, overlay map[string]string) map[string]string {
	merged := make(map[string]string, len(defaults)+len(overlay))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}

func mergeSituation(defaults map[string]config.StateEntry, overlay map[string]string) []model.StateObject {
	out := make([]model.StateObject, 0, len(defaults))
	for uid, entry := range defaults {
		relation := model.Relation(entry.Relation)
		state := entry.State
		if v, ok := overlay[uid]; ok {
			state = v
			relation = model.RelationEq
		}
		so := model.NewStateObject(uid, relation, state)
		so.Priority = entry.Priority
		out = append(out, so)
	}
	return out
}
