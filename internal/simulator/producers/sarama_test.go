package producers

import (
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSaramaProducerWriteMessage(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"cars":12}` {
			return errors.New("unexpected payload")
		}
		return nil
	})
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewSaramaProducerFrom(mock, zap.NewNop())
	require.NoError(t, p.WriteMessage("vehicle_count_events", []byte(`{"cars":12}`)))
	assert.ErrorIs(t, p.WriteMessage("vehicle_count_events", []byte(`{}`)), sarama.ErrOutOfBrokers)

	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.WriteMessage("vehicle_count_events", nil), ErrProducerClosed)
	assert.NoError(t, p.Close())
}

func TestBrokerList(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, BrokerList(" a:9092, ,b:9092 "))
	assert.Empty(t, BrokerList(""))
}

func TestNewSaramaConfig(t *testing.T) {
	cfg := NewSaramaConfig(&models.Config{SessionTimeoutMs: 10000})
	assert.True(t, cfg.Producer.Return.Successes)
	assert.Equal(t, sarama.WaitForAll, cfg.Producer.RequiredAcks)
	assert.Equal(t, 10*time.Second, cfg.Consumer.Group.Session.Timeout)

	cfg = NewSaramaConfig(&models.Config{})
	assert.Equal(t, 45*time.Second, cfg.Consumer.Group.Session.Timeout)
}

func TestNewSaramaProducerRequiresBrokers(t *testing.T) {
	_, err := NewSaramaProducer(&models.Config{KafkaBrokerList: " , "}, zap.NewNop())
	assert.Error(t, err)
}
