package redis

const (
	// createSessionScript atomically writes a session hash and its user index.
	// Returns 0 without writing when the session already exists.
	createSessionScript = `
local session_key = KEYS[1]     -- zengenius:session:{sessionID}
local user_index = KEYS[2]      -- zengenius:sessions:user:{userID}

local score = ARGV[1]           -- created_at in unix milliseconds
local session_id = ARGV[2]

if redis.call('EXISTS', session_key) == 1 then
  return 0
end

-- Remaining ARGV are field/value pairs; absent optional fields are omitted
redis.call('HSET', session_key, unpack(ARGV, 3))
redis.call('ZADD', user_index, score, session_id)

return 1
`
)
