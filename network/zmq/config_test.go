package zmq

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfig(t *testing.T) {
	viper.Reset()
	viper.Set("zmq.publickey", "client-public")
	viper.Set("zmq.privatekey", "client-private")
	viper.Set("zmq.timeout", 5)
	viper.Set("zmq.nodes", []map[string]interface{}{
		{"publickey": "node-public", "host": "10.0.0.1", "port": 2030},
	})

	conf, err := GetConfig()
	require.NoError(t, err)
	assert.Equal(t, "client-public", conf.PublicKey)
	assert.Equal(t, "client-private", conf.PrivateKey)
	assert.Equal(t, uint16(5), conf.Timeout)
	require.Len(t, conf.Nodes, 1)
	assert.Equal(t, "10.0.0.1", conf.Nodes[0].Host)
	assert.Equal(t, uint16(2030), conf.Nodes[0].Port)
}

func TestNewNodeValidation(t *testing.T) {
	client := &Client{}
	_, err := newNode(client, &NodeConfig{Host: "", Port: 2030})
	require.Error(t, err)
	_, err = newNode(client, &NodeConfig{Host: "10.0.0.1", Port: 0})
	require.Error(t, err)

	node, err := newNode(client, &NodeConfig{Host: "10.0.0.1", Port: 2030, PublicKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "tcp://10.0.0.1:2030", node.connString())
}
